package ats

import (
	"context"
	"fmt"
	"math"

	"github.com/spigell/ats-scorer/internal/experience"
	"github.com/spigell/ats-scorer/internal/resume"
	"github.com/spigell/ats-scorer/internal/skills"
	"github.com/spigell/ats-scorer/internal/textproc"
)

const maxKeywordImprovements = 10

// Weights blend the rule-based sub-scores into the overall score.
type Weights struct {
	Keywords   float64 `mapstructure:"keywords" validate:"gte=0,lte=1"`
	Skills     float64 `mapstructure:"skills" validate:"gte=0,lte=1"`
	Experience float64 `mapstructure:"experience" validate:"gte=0,lte=1"`
}

// DefaultWeights returns 0.4 keywords, 0.4 skills, 0.2 experience.
func DefaultWeights() Weights {
	return Weights{Keywords: 0.4, Skills: 0.4, Experience: 0.2}
}

// Validate checks that the weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	if w.Keywords < 0 || w.Skills < 0 || w.Experience < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if sum := w.Keywords + w.Skills + w.Experience; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %.4f", sum)
	}
	return nil
}

// RuleBased is the deterministic keyword and skill overlap scorer.
// It is safe for concurrent use.
type RuleBased struct {
	normalizer *textproc.Normalizer
	extractor  *textproc.Extractor
	aligner    *experience.Aligner
	weights    Weights
}

// NewRuleBased builds a scorer over the given vocabulary and weights.
func NewRuleBased(vocab textproc.Vocabulary, weights Weights) (*RuleBased, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	normalizer := textproc.NewNormalizer(vocab)
	extractor := textproc.NewExtractor(normalizer)

	return &RuleBased{
		normalizer: normalizer,
		extractor:  extractor,
		aligner:    experience.NewAligner(extractor),
		weights:    weights,
	}, nil
}

// NewDefaultRuleBased builds a scorer with the default vocabulary and weights.
func NewDefaultRuleBased() *RuleBased {
	rb, err := NewRuleBased(textproc.DefaultVocabulary(), DefaultWeights())
	if err != nil {
		panic(err)
	}
	return rb
}

func (r *RuleBased) Name() string { return StrategyRuleBased }

// Score never fails; the error return satisfies Strategy.
func (r *RuleBased) Score(_ context.Context, data *resume.Data, jobText string) (*Result, error) {
	resumeTokens := r.normalizer.TokenSet(resume.PlainText(data))
	jobKeywords := r.extractor.Extract(jobText)

	var present int
	absent := make([]string, 0, len(jobKeywords))
	for _, kw := range jobKeywords {
		if _, ok := resumeTokens[kw]; ok {
			present++
			continue
		}
		absent = append(absent, kw)
	}

	var keywordOverlap float64
	if len(jobKeywords) > 0 {
		keywordOverlap = float64(present) / float64(len(jobKeywords)) * 100
	}

	required := skills.ExtractRequired(jobText, r.extractor)
	candidate := data.CandidateSkills()
	skillMatch := skills.MatchPercentage(candidate, required)
	experienceAlignment := r.aligner.Score(data, jobText)

	score := r.weights.Keywords*keywordOverlap +
		r.weights.Skills*skillMatch +
		r.weights.Experience*experienceAlignment

	return &Result{
		Score:               Percent(score),
		SkillMatch:          Percent(skillMatch),
		MissingSkills:       CleanList(skills.Missing(candidate, required), MaxListItems),
		KeywordImprovements: CleanList(absent, maxKeywordImprovements),
		ExperienceAlignment: Percent(experienceAlignment),
		Strategy:            StrategyRuleBased,
	}, nil
}
