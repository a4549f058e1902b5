package skills

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spigell/ats-scorer/internal/textproc"
)

const maxFragmentLength = 50

var (
	// sectionHeaderRe matches a skills/qualifications/requirements heading at the start of a line,
	// terminated by a colon or a line break.
	sectionHeaderRe = regexp.MustCompile(`(?im)^[ \t#*•\-]*(?:(?:required|preferred|technical|key|core|minimum|basic)\s+)?(?:skills|qualifications|requirements)\b[^\n:]{0,40}(?::|\n|$)`)
	sectionEndRe    = regexp.MustCompile(`\n[ \t]*\n`)
	fragmentSplitRe = regexp.MustCompile(`[,•·|\n\-*;]`)
)

// ExtractRequired derives the skills a job description asks for.
//
// Only an explicit skills section produces required skills: its fragments are
// kept and then joined with the extracted keywords that are known technical
// terms. Other keywords ("experience", "team", "scalable") are left out: they
// are not skills, and counting them would turn skill match into a second
// keyword score. Without a section the result is empty.
func ExtractRequired(jobText string, extractor *textproc.Extractor) []string {
	fragments := sectionFragments(jobText)
	if len(fragments) == 0 {
		return []string{}
	}

	required := Normalize(fragments)
	seen := make(map[string]struct{}, len(required))
	for _, r := range required {
		seen[r] = struct{}{}
	}

	if extractor == nil {
		return required
	}

	vocab := extractor.Normalizer().Vocabulary()
	for _, kw := range extractor.Extract(jobText) {
		if !vocab.IsTechTerm(kw) {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		required = append(required, kw)
	}

	return required
}

func sectionFragments(text string) []string {
	headers := sectionHeaderRe.FindAllStringIndex(text, -1)
	if len(headers) == 0 {
		return nil
	}

	var fragments []string
	for _, loc := range headers {
		body := text[loc[1]:]
		if end := sectionEndRe.FindStringIndex(body); end != nil {
			body = body[:end[0]]
		}

		for _, part := range fragmentSplitRe.Split(body, -1) {
			part = strings.TrimSpace(strings.Trim(strings.TrimSpace(part), ".:"))
			if n := utf8.RuneCountInString(part); n == 0 || n >= maxFragmentLength {
				continue
			}
			fragments = append(fragments, part)
		}
	}

	return fragments
}
