// Package skills compares candidate skills against the skills a job asks for.
package skills

import "strings"

// Set is a candidate skill collection prepared for exact and fuzzy lookups.
type Set struct {
	exact map[string]struct{}
	list  []string
}

// NewSet normalizes the candidate skills. Empty entries are ignored because an
// empty string would fuzzy-match every required skill.
func NewSet(candidate []string) Set {
	list := Normalize(candidate)
	exact := make(map[string]struct{}, len(list))
	for _, s := range list {
		exact[s] = struct{}{}
	}
	return Set{exact: exact, list: list}
}

// Len returns the number of distinct candidate skills.
func (s Set) Len() int {
	return len(s.list)
}

// Has reports whether the required skill is covered by the set, either exactly
// or by substring containment in either direction ("react" vs "react.js").
func (s Set) Has(required string) bool {
	required = normalizeOne(required)
	if required == "" {
		return false
	}
	if _, ok := s.exact[required]; ok {
		return true
	}
	for _, c := range s.list {
		if strings.Contains(c, required) || strings.Contains(required, c) {
			return true
		}
	}
	return false
}

// MatchPercentage returns the share of required skills covered by candidate, 0–100.
// No required skills means no signal, so the result is 0 rather than 100.
func MatchPercentage(candidate, required []string) float64 {
	required = Normalize(required)
	if len(required) == 0 {
		return 0
	}

	set := NewSet(candidate)
	matched := 0
	for _, r := range required {
		if set.Has(r) {
			matched++
		}
	}

	return float64(matched) / float64(len(required)) * 100
}

// Missing returns the required skills not covered by candidate, in required order.
func Missing(candidate, required []string) []string {
	set := NewSet(candidate)
	missing := make([]string, 0)
	for _, r := range Normalize(required) {
		if !set.Has(r) {
			missing = append(missing, r)
		}
	}
	return missing
}

// Normalize trims and lowercases skills, dropping empty and duplicate entries.
func Normalize(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = normalizeOne(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func normalizeOne(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
