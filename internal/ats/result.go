// Package ats scores a resume against a job description.
//
// Service picks a strategy: the AI scorer when one is configured, and the
// deterministic rule-based scorer when AI is disabled or fails.
package ats

import (
	"math"
	"strings"
)

// Strategy names stored in Result.Strategy.
const (
	StrategyAI        = "ai"
	StrategyRuleBased = "rule_based"
	StrategyEmpty     = "empty"
)

// MaxListItems caps every list field of a Result.
const MaxListItems = 15

// Result is the outcome of scoring one resume against one job description.
// Numeric fields are integers in [0, 100]; list fields are never nil.
type Result struct {
	Score               int         `json:"score"`
	SkillMatch          int         `json:"skillMatch"`
	MissingSkills       []string    `json:"missingSkills"`
	KeywordImprovements []string    `json:"keywordImprovements"`
	ExperienceAlignment int         `json:"experienceAlignment"`
	Analysis            *Analysis   `json:"analysis,omitempty"`
	Strategy            string      `json:"strategy"`
	Usage               *TokenUsage `json:"usage,omitempty"`
}

// Analysis is the qualitative feedback produced by the AI scorer.
type Analysis struct {
	Strengths             []string `json:"strengths"`
	Weaknesses            []string `json:"weaknesses"`
	MissingQualifications []string `json:"missingQualifications"`
	ExperienceGaps        []string `json:"experienceGaps"`
	Recommendations       []string `json:"recommendations"`
}

// TokenUsage is the provider-reported token accounting for one AI call.
type TokenUsage struct {
	Model            string `json:"model"`
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
	TotalTokens      int    `json:"totalTokens"`
}

// ZeroResult is returned for an absent or empty resume.
func ZeroResult() *Result {
	return &Result{
		MissingSkills:       []string{},
		KeywordImprovements: []string{},
		Strategy:            StrategyEmpty,
	}
}

// Percent rounds v to the nearest integer and clamps it to [0, 100]. NaN maps to 0.
func Percent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// CleanList trims items, drops blanks, removes case-insensitive duplicates
// keeping the first spelling, and truncates to limit. The result is never nil.
func CleanList(items []string, limit int) []string {
	out := make([]string, 0, min(len(items), max(limit, 0)))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if len(out) >= limit {
			break
		}

		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}

	return out
}
