// Package ranking scores one resume against many job descriptions and orders the results.
package ranking

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/jobs"
	"github.com/spigell/ats-scorer/internal/resume"
)

// Scorer is satisfied by *ats.Service.
type Scorer interface {
	ComputeScore(ctx context.Context, data *resume.Data, jobText string) (*ats.Result, error)
}

// Filter is a single step applied to the job list.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error)
}

// Deps aggregates dependencies shared across all steps.
type Deps struct {
	Logger *zap.Logger
	Scorer Scorer
	Resume *resume.Data
}

// Step describes the result of executing a step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config holds settings consumed by the steps.
type Config struct {
	// ExcludeFile lists dismissed jobs to skip. Empty disables the step.
	ExcludeFile string `mapstructure:"exclude-file"`
	// MinimumScore drops jobs scoring below it.
	MinimumScore int `mapstructure:"minimum-score" validate:"gte=0,lte=100"`
	// Concurrency bounds parallel scoring calls.
	Concurrency int `mapstructure:"concurrency" validate:"gte=0,lte=64"`
}

// Status represents runtime information about a step.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

type resultCollector interface {
	Results() map[*jobs.Job]*ats.Result
}

// DefaultSteps returns the standard pipeline: drop dismissed jobs, drop blank
// descriptions, then score and apply the minimum score.
func DefaultSteps() []Filter {
	return []Filter{NewExcludeFile(), NewBlankText(), NewScore()}
}

// DisableByName marks the step with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the steps sequentially and returns the remaining jobs with their scores.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, j *jobs.Jobs) (*jobs.Jobs, map[*jobs.Job]*ats.Result, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	results := make(map[*jobs.Job]*ats.Result)
	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("ranking step disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, j)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		j = next

		if collector, ok := step.(resultCollector); ok {
			maps.Copy(results, collector.Results())
		}
	}

	return j, results, nil
}

// Describe returns status entries for the provided steps.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
