package resume

import (
	"strings"
)

type fragmentKind int

const (
	kindSection fragmentKind = iota
	kindHeading
	kindParagraph
	kindField
	kindBullet
	kindBreak
)

// fragment is one piece of the resume in document order. PlainText reads the
// terms of non-detail fragments, Render formats all of them.
type fragment struct {
	kind  fragmentKind
	label string
	text  string
	// terms are the keyword-relevant values behind text.
	terms []string
	// detail marks contact data, dates, links and grades.
	detail bool
}

// walk lists the fragments of d. Both renderings are built on it.
func walk(d *Data) []fragment {
	if d == nil {
		return nil
	}

	var out []fragment
	section := func(title string) { out = append(out, fragment{kind: kindSection, text: title}) }
	field := func(label, value string, detail bool, terms ...string) {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, fragment{kind: kindField, label: label, text: value, terms: terms, detail: detail})
		}
	}
	bullets := func(values []string) {
		for _, v := range nonEmpty(values) {
			out = append(out, fragment{kind: kindBullet, text: v, terms: []string{v}})
		}
	}
	brk := func() { out = append(out, fragment{kind: kindBreak}) }

	if c := d.Contact; !c.isEmpty() {
		section("Contact")
		field("Name", c.Name, true)
		field("Email", c.Email, true)
		field("Phone", c.Phone, true)
		field("Location", c.Location, true)
		field("LinkedIn", c.LinkedIn, true)
		field("GitHub", c.GitHub, true)
		field("Website", c.Website, true)
		brk()
	}

	if s := strings.TrimSpace(d.Summary); s != "" {
		section("Summary")
		out = append(out, fragment{kind: kindParagraph, text: s, terms: []string{s}})
		brk()
	}

	if skills := nonEmpty(d.Skills); len(skills) > 0 {
		section("Skills")
		out = append(out, fragment{kind: kindParagraph, text: strings.Join(skills, ", "), terms: skills})
		brk()
	}

	if len(d.Experience) > 0 {
		section("Experience")
		for _, exp := range d.Experience {
			heading := joinNonEmpty(" at ", exp.Title, exp.Company)
			if loc := strings.TrimSpace(exp.Location); loc != "" {
				heading += " (" + loc + ")"
			}
			out = append(out, fragment{kind: kindHeading, text: heading, terms: []string{exp.Title, exp.Company, exp.Location}})
			if period := experiencePeriod(exp); period != "" {
				out = append(out, fragment{kind: kindParagraph, text: period, detail: true})
			}
			bullets(exp.Bullets)
			brk()
		}
	}

	if len(d.Projects) > 0 {
		section("Projects")
		for _, p := range d.Projects {
			out = append(out, fragment{kind: kindHeading, text: strings.TrimSpace(p.Name), terms: []string{p.Name}})
			if desc := strings.TrimSpace(p.Description); desc != "" {
				out = append(out, fragment{kind: kindParagraph, text: desc, terms: []string{desc}})
			}
			if tech := nonEmpty(p.Technologies); len(tech) > 0 {
				field("Technologies", strings.Join(tech, ", "), false, tech...)
			}
			field("Link", p.Link, true)
			bullets(p.Bullets)
			brk()
		}
	}

	if len(d.Education) > 0 {
		section("Education")
		for _, edu := range d.Education {
			heading := joinNonEmpty(", ", edu.Degree, edu.Institution)
			if loc := strings.TrimSpace(edu.Location); loc != "" {
				heading += " (" + loc + ")"
			}
			out = append(out, fragment{kind: kindHeading, text: heading, terms: []string{edu.Degree, edu.Institution, edu.Location}})
			field("Graduated", edu.GraduationDate, true)
			field("GPA", edu.GPA, true)
			bullets(edu.Highlights)
			brk()
		}
	}

	return out
}

// PlainText flattens the free-text parts of the resume into one blob for keyword analysis.
// Contact details, dates and links are left out.
func PlainText(d *Data) string {
	var parts []string
	for _, f := range walk(d) {
		if f.detail {
			continue
		}
		parts = append(parts, nonEmpty(f.terms)...)
	}
	return strings.Join(parts, "\n")
}

// Render formats the resume as a markdown document for model prompts.
// Sections without content are omitted.
func Render(d *Data) string {
	var b strings.Builder
	for _, f := range walk(d) {
		switch f.kind {
		case kindSection:
			b.WriteString("## " + f.text + "\n")
		case kindHeading:
			b.WriteString("### " + f.text + "\n")
		case kindParagraph:
			b.WriteString(f.text + "\n")
		case kindField:
			b.WriteString(f.label + ": " + f.text + "\n")
		case kindBullet:
			b.WriteString("- " + f.text + "\n")
		case kindBreak:
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func experiencePeriod(exp Experience) string {
	start := strings.TrimSpace(exp.StartDate)
	end := strings.TrimSpace(exp.EndDate)
	if exp.Current {
		end = "Present"
	}
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	default:
		return end
	}
}

func joinNonEmpty(sep string, values ...string) string {
	return strings.Join(nonEmpty(values), sep)
}
