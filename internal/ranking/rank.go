package ranking

import (
	"context"
	"encoding/json"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/jobs"
)

// Ranked is one scored job.
type Ranked struct {
	Job    *jobs.Job   `json:"job"`
	Result *ats.Result `json:"result"`
}

// Rank runs steps over the jobs and returns the survivors ordered by score,
// highest first, ties broken by job ID.
func Rank(ctx context.Context, cfg *Config, deps Deps, steps []Filter, j *jobs.Jobs) ([]Ranked, error) {
	if steps == nil {
		steps = DefaultSteps()
	}

	left, results, err := Run(ctx, cfg, deps, steps, j)
	if err != nil {
		return nil, err
	}

	ranked := make([]Ranked, 0, left.Len())
	for _, job := range left.Items {
		result, ok := results[job]
		if !ok {
			continue
		}
		ranked = append(ranked, Ranked{Job: job, Result: result})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Result.Score != ranked[b].Result.Score {
			return ranked[a].Result.Score > ranked[b].Result.Score
		}
		return ranked[a].Job.ID < ranked[b].Job.ID
	})

	return ranked, nil
}

// Report flattens ranked jobs into printable rows.
func Report(ranked []Ranked) []map[string]string {
	rows := make([]map[string]string, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, map[string]string{
			"id":                   r.Job.ID,
			"title":                r.Job.Title,
			"score":                strconv.Itoa(r.Result.Score),
			"skill_match":          strconv.Itoa(r.Result.SkillMatch),
			"experience_alignment": strconv.Itoa(r.Result.ExperienceAlignment),
			"missing_skills":       strings.Join(r.Result.MissingSkills, ", "),
			"strategy":             r.Result.Strategy,
		})
	}
	return rows
}

// Scores maps job IDs to their overall score.
func Scores(ranked []Ranked) map[string]int {
	scores := make(map[string]int, len(ranked))
	for _, r := range ranked {
		scores[r.Job.ID] = r.Result.Score
	}
	return scores
}

// Jobs returns the jobs of ranked in rank order.
func Jobs(ranked []Ranked) []*jobs.Job {
	items := make([]*jobs.Job, 0, len(ranked))
	for _, r := range ranked {
		items = append(items, r.Job)
	}
	return items
}

// Without returns ranked minus the jobs with the given IDs, keeping order.
func Without(ranked []Ranked, ids ...string) []Ranked {
	return slices.DeleteFunc(slices.Clone(ranked), func(r Ranked) bool {
		return slices.Contains(ids, r.Job.ID)
	})
}

// DumpToTmpFile writes ranked as indented JSON to a new temporary file and returns its name.
func DumpToTmpFile(ranked []Ranked) (string, error) {
	file, err := os.CreateTemp("", "ats_ranking_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ranked); err != nil {
		return "", err
	}
	return file.Name(), nil
}
