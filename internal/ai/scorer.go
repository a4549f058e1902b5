package ai

import (
	"context"
	"errors"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/logger"
	"github.com/spigell/ats-scorer/internal/resume"
)

const (
	defaultMaxLogLength = 200
	defaultMaxTokens    = 2048
)

// Scorer asks a language model to score a resume. It implements ats.Strategy.
type Scorer struct {
	completer Completer
	logger    *zap.Logger
	maxLogLen int
	maxTokens int
}

func NewScorer(completer Completer, log *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		completer: completer,
		logger:    logger.OrNop(log),
		maxLogLen: maxLogLength,
		maxTokens: defaultMaxTokens,
	}
}

func (s *Scorer) Name() string { return ats.StrategyAI }

// Score never falls back on its own: every failure is returned as one of the
// typed ats errors so the caller can decide.
func (s *Scorer) Score(ctx context.Context, data *resume.Data, jobText string) (*ats.Result, error) {
	if s == nil || s.completer == nil {
		return nil, &ats.ConfigurationError{Message: "ai completer is not configured"}
	}

	prompt := buildPrompt(resume.Render(data), jobText)

	s.logger.Debug("ai score request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.Preview(prompt, s.maxLogLen)),
	)

	completion, err := s.completer.Complete(ctx, Request{
		System:    systemInstruction,
		Prompt:    prompt,
		JSON:      true,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return nil, asTyped(err)
	}
	if completion == nil {
		return nil, &ats.ResponseFormatError{Message: "no completion returned", Err: ats.ErrEmptyResponse}
	}

	log := logger.WithCommonFields(s.logger, completion.Provider, completion.Model)
	log.Debug("ai score response",
		zap.Int("response_length", utf8.RuneCountInString(completion.Text)),
		zap.String("response_preview", logger.Preview(completion.Text, s.maxLogLen)),
		zap.Int("prompt_tokens", completion.Usage.PromptTokens),
		zap.Int("completion_tokens", completion.Usage.CompletionTokens),
	)

	outcome, err := parseResponse(completion.Text)
	if err != nil {
		return nil, err
	}
	if outcome.stage != stageCanonical {
		log.Debug("recovered json from fenced block", zap.String("stage", string(outcome.stage)))
	}

	result, err := validateResponse(outcome)
	if err != nil {
		return nil, err
	}

	result.Usage = &ats.TokenUsage{
		Model:            completion.Model,
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}

	return result, nil
}

// asTyped keeps typed scoring errors and reports anything else as a transport failure.
func asTyped(err error) error {
	var (
		configErr    *ats.ConfigurationError
		transportErr *ats.TransportError
		formatErr    *ats.ResponseFormatError
	)
	if errors.As(err, &configErr) || errors.As(err, &transportErr) || errors.As(err, &formatErr) {
		return err
	}
	return &ats.TransportError{Message: "completion failed", Err: err}
}
