package ranking

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/jobs"
	"github.com/spigell/ats-scorer/internal/logger"
)

type excludeFileFilter struct {
	disabled bool
	reason   string
	path     string
}

// NewExcludeFile creates a step that removes jobs listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludeFileFilter) IsEnabled() bool { return !f.disabled }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := j.Len()
	if f.path == "" {
		return j, Step{Initial: initial, Left: initial}, nil
	}

	excluded, err := jobs.LoadExcluded(f.path)
	if err != nil {
		return j, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	removed := j.Exclude(excluded.IDs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding jobs based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_jobs", removed),
			zap.Int("jobs_left", j.Len()),
		)
	}

	return j, Step{Initial: initial, Dropped: len(removed), Left: j.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type blankTextFilter struct{}

// NewBlankText creates a step that removes jobs without description text.
func NewBlankText() Filter {
	return &blankTextFilter{}
}

func (f *blankTextFilter) Name() string { return "blank_text" }

func (f *blankTextFilter) Disable(string) {}

func (f *blankTextFilter) IsEnabled() bool { return true }

func (f *blankTextFilter) Validate(*Config) error { return nil }

func (f *blankTextFilter) Apply(_ context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := j.Len()

	removed := j.RemoveFunc(func(job *jobs.Job) bool {
		return strings.TrimSpace(job.Text) == ""
	})

	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding jobs without description",
			zap.Strings("excluded_jobs", removed),
			zap.Int("jobs_left", j.Len()),
		)
	}

	return j, Step{Initial: initial, Dropped: len(removed), Left: j.Len()}, nil
}

type scoreFilter struct {
	minimum     int
	concurrency int
	results     map[*jobs.Job]*ats.Result
}

// NewScore creates the step that scores every job and drops those below the minimum score.
func NewScore() Filter {
	return &scoreFilter{}
}

func (f *scoreFilter) Name() string { return "score" }

func (f *scoreFilter) Disable(string) {}

func (f *scoreFilter) IsEnabled() bool { return true }

func (f *scoreFilter) Validate(cfg *Config) error {
	f.minimum, f.concurrency = 0, 0
	if cfg != nil {
		f.minimum = cfg.MinimumScore
		f.concurrency = cfg.Concurrency
	}
	if f.minimum < 0 || f.minimum > 100 {
		return fmt.Errorf("minimum score must be within [0, 100], got %d", f.minimum)
	}
	if f.concurrency <= 0 {
		f.concurrency = runtime.GOMAXPROCS(0)
	}
	return nil
}

func (f *scoreFilter) Apply(ctx context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := j.Len()
	if deps.Scorer == nil {
		return j, Step{}, fmt.Errorf("scorer is required for ranking")
	}

	scored := make([]*ats.Result, initial)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, job := range j.Items {
		g.Go(func() error {
			result, err := deps.Scorer.ComputeScore(gctx, deps.Resume, job.Text)
			if err != nil {
				return fmt.Errorf("score job %q: %w", job.ID, err)
			}
			scored[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return j, Step{}, err
	}

	f.results = make(map[*jobs.Job]*ats.Result, initial)
	kept := make([]*jobs.Job, 0, initial)
	for i, job := range j.Items {
		result := scored[i]
		if result.Score < f.minimum {
			if deps.Logger != nil {
				logger.WithFields(deps.Logger, zap.String(logger.FieldJobID, job.ID)).Info("job below minimum score",
					zap.Int("score", result.Score),
					zap.Int("minimum_score", f.minimum),
				)
			}
			continue
		}
		kept = append(kept, job)
		f.results[job] = result
	}
	j.Items = kept

	return j, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

// Results maps each kept job to its score. Jobs are keyed by identity since IDs may repeat.
func (f *scoreFilter) Results() map[*jobs.Job]*ats.Result {
	out := make(map[*jobs.Job]*ats.Result, len(f.results))
	maps.Copy(out, f.results)
	return out
}

func (f *scoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{
			"minimum_score": strconv.Itoa(f.minimum),
			"concurrency":   strconv.Itoa(f.concurrency),
		},
	}
}
