// Package experience scores how well a candidate's work history lines up with a job posting.
package experience

import (
	"regexp"
	"strings"

	"github.com/spigell/ats-scorer/internal/resume"
	"github.com/spigell/ats-scorer/internal/textproc"
)

const (
	titleWeight   = 0.4
	keywordWeight = 0.6

	minTitleWordLength = 4
	maxTitleWords      = 6
)

var (
	explicitTitleRe = regexp.MustCompile(`(?i)\b(?:position|role|job title|title|looking for|seeking)\b\s*(?:is\b|:|-)?\s*([^\n.,;:!?()]+)`)
	roleNounRe      = regexp.MustCompile(`(?i)\b((?:[a-z][a-z0-9+#.\-]*\s+){0,3}(?:engineer|developer|manager|designer|analyst|scientist|architect|consultant|specialist|administrator|lead|director|intern)s?)\b`)

	titleConnectors = map[string]struct{}{
		"to": {}, "who": {}, "with": {}, "that": {}, "which": {}, "and": {},
		"at": {}, "for": {}, "in": {}, "on": {}, "responsible": {}, "you": {}, "we": {},
	}
	titleFillers = map[string]struct{}{
		"a": {}, "an": {}, "the": {}, "our": {}, "we": {}, "are": {}, "is": {},
		"hiring": {}, "seeking": {}, "looking": {}, "need": {}, "needs": {}, "join": {}, "wanted": {},
	}
)

// Aligner compares resume experience entries against job text.
type Aligner struct {
	extractor *textproc.Extractor
}

func NewAligner(extractor *textproc.Extractor) *Aligner {
	return &Aligner{extractor: extractor}
}

// Score returns experience alignment in [0, 100].
//
// The title part is the best share, over all entries, of significant words of
// the inferred job title found in the entry title. The keyword part is the share of job keywords
// found anywhere in the experience titles, companies and bullets. A resume
// without experience scores 0.
func (a *Aligner) Score(data *resume.Data, jobText string) float64 {
	if data == nil || len(data.Experience) == 0 {
		return 0
	}

	titles := make([]string, 0, len(data.Experience))
	var blob strings.Builder
	for _, exp := range data.Experience {
		title := strings.ToLower(exp.Title)
		titles = append(titles, title)

		blob.WriteString(title)
		blob.WriteByte('\n')
		blob.WriteString(strings.ToLower(exp.Company))
		blob.WriteByte('\n')
		for _, bullet := range exp.Bullets {
			blob.WriteString(strings.ToLower(bullet))
			blob.WriteByte('\n')
		}
	}

	titleScore := titleMatch(InferTitle(jobText), titles)
	keywordScore := keywordMatch(a.extractor.Extract(jobText), blob.String())

	return titleWeight*titleScore + keywordWeight*keywordScore
}

// InferTitle guesses the role a job description is hiring for. It returns an
// empty string when nothing title-like is found.
func InferTitle(jobText string) string {
	if m := explicitTitleRe.FindStringSubmatch(jobText); m != nil {
		if title := cleanTitle(m[1], true); title != "" {
			return title
		}
	}

	if m := roleNounRe.FindStringSubmatch(jobText); m != nil {
		return cleanTitle(m[1], false)
	}

	return ""
}

func cleanTitle(raw string, cutAtConnector bool) string {
	words := strings.Fields(raw)

	if cutAtConnector {
		for i, w := range words {
			if _, ok := titleConnectors[strings.ToLower(w)]; ok && i > 0 {
				words = words[:i]
				break
			}
		}
	}

	for len(words) > 0 {
		if _, ok := titleFillers[strings.ToLower(words[0])]; !ok {
			break
		}
		words = words[1:]
	}

	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}

	return strings.Join(words, " ")
}

func titleMatch(title string, experienceTitles []string) float64 {
	var significant []string
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if len([]rune(w)) >= minTitleWordLength {
			significant = append(significant, w)
		}
	}
	if len(significant) == 0 {
		return 0
	}

	best := 0
	for _, t := range experienceTitles {
		matched := 0
		for _, w := range significant {
			if strings.Contains(t, w) {
				matched++
			}
		}
		best = max(best, matched)
	}

	return float64(best) / float64(len(significant)) * 100
}

func keywordMatch(keywords []string, blob string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	matched := 0
	for _, kw := range keywords {
		if strings.Contains(blob, kw) {
			matched++
		}
	}

	return float64(matched) / float64(len(keywords)) * 100
}
