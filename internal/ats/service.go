package ats

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/logger"
	"github.com/spigell/ats-scorer/internal/resume"
)

// DefaultTimeout bounds the primary strategy when no timeout is configured.
const DefaultTimeout = 20 * time.Second

// Strategy scores a resume against job text.
type Strategy interface {
	Name() string
	Score(ctx context.Context, data *resume.Data, jobText string) (*Result, error)
}

// Service is the scoring entry point. It runs the primary strategy under a
// timeout and falls back on any primary failure.
type Service struct {
	logger   *zap.Logger
	primary  Strategy
	fallback Strategy
	timeout  time.Duration
}

// NewService wires a scoring service. primary may be nil, in which case every
// call goes to the fallback. A nil fallback uses the default rule-based scorer.
func NewService(log *zap.Logger, primary, fallback Strategy, timeout time.Duration) *Service {
	if fallback == nil {
		fallback = NewDefaultRuleBased()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Service{
		logger:   logger.OrNop(log),
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
	}
}

// ComputeScore scores data against jobText. An empty resume yields ZeroResult
// without invoking any strategy.
func (s *Service) ComputeScore(ctx context.Context, data *resume.Data, jobText string) (*Result, error) {
	if data.IsEmpty() {
		s.logger.Debug("empty resume, skipping scoring")
		return ZeroResult(), nil
	}

	if s.primary != nil {
		result, err := s.runPrimary(ctx, data, jobText)
		if err == nil {
			return result, nil
		}

		s.logger.Warn("primary scoring failed, using fallback",
			append(logger.ScoringFields(s.primary.Name(), Classify(err)),
				zap.String("fallback", s.fallback.Name()),
				zap.Error(err),
			)...,
		)
	}

	result, err := s.fallback.Score(ctx, data, jobText)
	if err != nil {
		return nil, fmt.Errorf("%s scoring: %w", s.fallback.Name(), err)
	}
	if result == nil {
		return nil, fmt.Errorf("%s scoring returned no result", s.fallback.Name())
	}

	return result, nil
}

// ComputeScoreRaw decodes a loosely typed resume payload before scoring.
// A payload that is not an object yields an InputError.
func (s *Service) ComputeScoreRaw(ctx context.Context, raw any, jobText string) (*Result, error) {
	data, err := resume.Decode(raw)
	if err != nil {
		return nil, err
	}

	return s.ComputeScore(ctx, data, jobText)
}

// AIEnabled reports whether a primary strategy is configured.
func (s *Service) AIEnabled() bool {
	return s.primary != nil
}

func (s *Service) runPrimary(ctx context.Context, data *resume.Data, jobText string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.primary.Score(ctx, data, jobText)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, &ResponseFormatError{Message: "strategy returned no result"}
	}
	return result, nil
}
