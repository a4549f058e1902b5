// Package textproc turns free text into comparable tokens and keyword lists.
//
// Everything in this package is pure: a Normalizer or Extractor can be shared
// between goroutines as long as its Vocabulary is not modified.
package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minTokenLength is the shortest token kept by the normalizer.
const minTokenLength = 3

// Normalizer lowercases text, strips punctuation and drops stop words and short tokens.
type Normalizer struct {
	vocab Vocabulary
}

// NewNormalizer returns a Normalizer backed by the given vocabulary.
func NewNormalizer(vocab Vocabulary) *Normalizer {
	return &Normalizer{vocab: vocab}
}

// Vocabulary returns the vocabulary the normalizer was built with.
func (n *Normalizer) Vocabulary() Vocabulary {
	return n.vocab
}

// Normalize returns the surviving tokens of text joined by single spaces.
func (n *Normalizer) Normalize(text string) string {
	return strings.Join(n.Tokens(text), " ")
}

// Tokens returns the normalized tokens of text in their original order.
func (n *Normalizer) Tokens(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// cases.Caser keeps internal state, so one is built per call.
	lowered := cases.Lower(language.English).String(text)
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, lowered)

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenLength {
			continue
		}
		if n.vocab.IsStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}

	return tokens
}

// TokenSet returns the distinct normalized tokens of text.
func (n *Normalizer) TokenSet(text string) map[string]struct{} {
	tokens := n.Tokens(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
