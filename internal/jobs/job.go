// Package jobs loads job descriptions from disk and tracks dismissed ones.
package jobs

import (
	"slices"
	"strings"
)

// Job is one job description to score a resume against.
type Job struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// Jobs is an ordered list of job descriptions.
type Jobs struct {
	Items []*Job
}

func (j *Jobs) Len() int {
	if j == nil {
		return 0
	}
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (j *Jobs) IDs() []string {
	ids := make([]string, 0, j.Len())
	for _, job := range j.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

// Exclude removes jobs whose ID is in ids, keeping the order of the rest.
// It returns the removed IDs.
func (j *Jobs) Exclude(ids []string) []string {
	return j.RemoveFunc(func(job *Job) bool {
		return slices.Contains(ids, job.ID)
	})
}

// RemoveFunc removes jobs for which del returns true and returns their IDs.
// Items is replaced with a new slice; the previous one is left intact.
func (j *Jobs) RemoveFunc(del func(*Job) bool) []string {
	var removed []string
	kept := make([]*Job, 0, len(j.Items))
	for _, job := range j.Items {
		if del(job) {
			removed = append(removed, job.ID)
			continue
		}
		kept = append(kept, job)
	}
	j.Items = kept
	return removed
}

// TitleFromText returns the first non-empty line without markdown heading or bold markers.
func TitleFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "#")
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*"))
		if line != "" {
			return line
		}
	}
	return ""
}
