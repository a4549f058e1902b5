package jobs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

// ExcludedJobs is the list of jobs the user dismissed. It is stored as JSON.
type ExcludedJobs struct {
	Items []*ExcludedJob
}

type ExcludedJob struct {
	ID         string
	Title      string
	Source     string
	Score      int
	ExcludedAt time.Time
}

// ToExcluded records the given jobs as dismissed now, with their scores when known.
func ToExcluded(items []*Job, scores map[string]int) *ExcludedJobs {
	excluded := &ExcludedJobs{}
	now := time.Now().UTC()
	for _, job := range items {
		excluded.Items = append(excluded.Items, &ExcludedJob{
			ID:         job.ID,
			Title:      job.Title,
			Source:     job.Source,
			Score:      scores[job.ID],
			ExcludedAt: now,
		})
	}
	return excluded
}

// LoadExcluded reads an exclude file. A missing or empty file yields an empty list.
func LoadExcluded(path string) (*ExcludedJobs, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ExcludedJobs{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return &ExcludedJobs{}, nil
	}

	var excluded ExcludedJobs
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedJobs) Append(other *ExcludedJobs) {
	if other == nil {
		return
	}
	e.Items = append(e.Items, other.Items...)
}

func (e *ExcludedJobs) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, job := range e.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

// ToFile overwrites path with the list.
func (e *ExcludedJobs) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
