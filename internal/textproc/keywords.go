package textproc

import "unicode/utf8"

const (
	// minKeywordFrequency is how often a token must repeat to count as a keyword.
	minKeywordFrequency = 2
	// longTokenLength is the length a token must exceed to count as a keyword on its own.
	longTokenLength = 5
)

// Extractor derives keyword lists from free text.
type Extractor struct {
	normalizer *Normalizer
}

// NewExtractor returns an Extractor that tokenizes with the given normalizer.
func NewExtractor(normalizer *Normalizer) *Extractor {
	return &Extractor{normalizer: normalizer}
}

// Normalizer returns the normalizer used by the extractor.
func (e *Extractor) Normalizer() *Normalizer {
	return e.normalizer
}

// Extract returns the distinct keywords of text in first-occurrence order.
// A token is a keyword when it repeats, is a known technical term, or is long.
func (e *Extractor) Extract(text string) []string {
	tokens := e.normalizer.Tokens(text)
	if len(tokens) == 0 {
		return []string{}
	}

	freq := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if freq[t] == 0 {
			order = append(order, t)
		}
		freq[t]++
	}

	vocab := e.normalizer.Vocabulary()
	keywords := make([]string, 0, len(order))
	for _, t := range order {
		if freq[t] >= minKeywordFrequency || vocab.IsTechTerm(t) || utf8.RuneCountInString(t) > longTokenLength {
			keywords = append(keywords, t)
		}
	}

	return keywords
}
