package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/logger"
)

const (
	maxRecommendationImprovements = 5
	bodyPreviewLength             = 500
)

var fencedBlockRe = regexp.MustCompile("```(?:json|JSON)?\\s*([\\s\\S]*?)```")

type parseStage string

const (
	stageCanonical parseStage = "canonical"
	stageFenced    parseStage = "fenced"
)

// parseOutcome is a decoded model response and the stage that produced it.
type parseOutcome struct {
	stage   parseStage
	payload map[string]any
}

// parseResponse decodes the model output as a JSON object, first as-is and
// then from a fenced code block.
func parseResponse(raw string) (parseOutcome, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return parseOutcome{}, &ats.ResponseFormatError{Message: "no text in model response", Err: ats.ErrEmptyResponse}
	}

	payload, canonicalErr := decodeObject(body)
	if canonicalErr == nil {
		return parseOutcome{stage: stageCanonical, payload: payload}, nil
	}

	for _, m := range fencedBlockRe.FindAllStringSubmatch(body, -1) {
		if payload, err := decodeObject(m[1]); err == nil {
			return parseOutcome{stage: stageFenced, payload: payload}, nil
		}
	}

	return parseOutcome{}, &ats.ResponseFormatError{
		Message: "model response is not a JSON object",
		Body:    logger.Preview(body, bodyPreviewLength),
		Err:     canonicalErr,
	}
}

func decodeObject(s string) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("response is null")
	}
	return payload, nil
}

// validateResponse checks the decoded payload against the response schema and
// converts it into a Result.
func validateResponse(outcome parseOutcome) (*ats.Result, error) {
	if err := checkSchema(outcome.payload); err != nil {
		return nil, err
	}

	p := outcome.payload

	score, err := percentField(p, "score")
	if err != nil {
		return nil, err
	}
	skillMatch, err := percentField(p, "skillMatch")
	if err != nil {
		return nil, err
	}
	experienceAlignment, err := percentField(p, "experienceAlignment")
	if err != nil {
		return nil, err
	}

	analysis := coerceAnalysis(p["analysis"])

	improvements := coerceStrings(p["keywordImprovements"])
	if analysis != nil {
		improvements = append(improvements, recommendationImprovements(improvements, analysis.Recommendations)...)
	}

	return &ats.Result{
		Score:               score,
		SkillMatch:          skillMatch,
		MissingSkills:       ats.CleanList(coerceStrings(p["missingSkills"]), ats.MaxListItems),
		KeywordImprovements: ats.CleanList(improvements, ats.MaxListItems),
		ExperienceAlignment: experienceAlignment,
		Analysis:            analysis,
		Strategy:            ats.StrategyAI,
	}, nil
}

// recommendationImprovements picks up to five recommendations not already listed.
func recommendationImprovements(existing, recommendations []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[strings.ToLower(e)] = struct{}{}
	}

	var out []string
	for _, r := range recommendations {
		if len(out) == maxRecommendationImprovements {
			break
		}
		key := strings.ToLower(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func percentField(payload map[string]any, field string) (int, error) {
	v := coerceFloat(payload[field])
	if math.IsNaN(v) {
		return 0, &ats.ValidationError{Field: field, Message: fmt.Sprintf("not a number: %v", payload[field])}
	}
	return ats.Percent(v), nil
}

func coerceAnalysis(v any) *ats.Analysis {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	return &ats.Analysis{
		Strengths:             ats.CleanList(coerceStrings(m["strengths"]), ats.MaxListItems),
		Weaknesses:            ats.CleanList(coerceStrings(m["weaknesses"]), ats.MaxListItems),
		MissingQualifications: ats.CleanList(coerceStrings(m["missingQualifications"]), ats.MaxListItems),
		ExperienceGaps:        ats.CleanList(coerceStrings(m["experienceGaps"]), ats.MaxListItems),
		Recommendations:       ats.CleanList(coerceStrings(m["recommendations"]), ats.MaxListItems),
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// coerceStrings keeps the trimmed non-empty string items of a JSON array.
func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
