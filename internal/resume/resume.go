// Package resume holds the structured resume model consumed by the scorers.
package resume

import "strings"

// Data is a parsed resume. Scorers treat it as read-only.
type Data struct {
	Contact    *Contact     `json:"contact,omitempty"`
	Summary    string       `json:"summary"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Projects   []Project    `json:"projects"`
	Education  []Education  `json:"education"`
}

type Contact struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

type Experience struct {
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location,omitempty"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate,omitempty"`
	Current   bool     `json:"current"`
	Bullets   []string `json:"bullets"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link,omitempty"`
	Bullets      []string `json:"bullets"`
}

type Education struct {
	Degree         string   `json:"degree"`
	Institution    string   `json:"institution"`
	Location       string   `json:"location,omitempty"`
	GraduationDate string   `json:"graduationDate"`
	GPA            string   `json:"gpa,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`
}

// IsEmpty reports whether the resume carries no usable content.
// A nil resume is empty.
func (d *Data) IsEmpty() bool {
	if d == nil {
		return true
	}
	if strings.TrimSpace(d.Summary) != "" {
		return false
	}
	if len(nonEmpty(d.Skills)) > 0 {
		return false
	}
	if len(d.Experience) > 0 || len(d.Projects) > 0 || len(d.Education) > 0 {
		return false
	}
	return d.Contact.isEmpty()
}

// CandidateSkills returns the listed skills followed by every project technology,
// trimmed and lowercased.
func (d *Data) CandidateSkills() []string {
	if d == nil {
		return nil
	}

	out := make([]string, 0, len(d.Skills))
	for _, s := range d.Skills {
		out = appendFolded(out, s)
	}
	for _, p := range d.Projects {
		for _, tech := range p.Technologies {
			out = appendFolded(out, tech)
		}
	}
	return out
}

func (c *Contact) isEmpty() bool {
	if c == nil {
		return true
	}
	for _, v := range []string{c.Name, c.Email, c.Phone, c.Location, c.LinkedIn, c.GitHub, c.Website} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func appendFolded(out []string, s string) []string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return out
	}
	return append(out, s)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
