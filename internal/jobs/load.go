package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".json":     true,
}

// Load reads job descriptions from a file or from every supported file in a directory.
//
// Plain text and markdown are used as is, HTML is converted to markdown, and a
// JSON file holds either one job object or an array of them. Jobs read from a
// text file are identified by the file name without extension. Repeated IDs
// get a numeric suffix in load order.
func Load(path string) (*Jobs, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("jobs path is required")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat jobs path: %w", err)
	}

	if !info.IsDir() {
		items, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		uniqueIDs(items)
		return &Jobs{Items: items}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !textExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	jobs := &Jobs{}
	for _, name := range names {
		items, err := loadFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		jobs.Items = append(jobs.Items, items...)
	}
	uniqueIDs(jobs.Items)

	return jobs, nil
}

func uniqueIDs(items []*Job) {
	seen := make(map[string]int, len(items))
	for _, job := range items {
		base := job.ID
		seen[base]++
		if seen[base] == 1 {
			continue
		}
		for n := seen[base]; ; n++ {
			id := fmt.Sprintf("%s-%d", base, n)
			if _, taken := seen[id]; !taken {
				job.ID = id
				seen[id] = 1
				seen[base] = n
				break
			}
		}
	}
}

func loadFile(path string) ([]*Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file %q: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch ext {
	case ".json":
		return decodeJobs(raw, id, path)
	case ".html", ".htm":
		text, err := FromHTML(string(raw))
		if err != nil {
			return nil, fmt.Errorf("convert job file %q: %w", path, err)
		}
		return []*Job{newJob(id, text, path)}, nil
	default:
		return []*Job{newJob(id, string(raw), path)}, nil
	}
}

// FromHTML converts an HTML job posting to markdown text.
func FromHTML(html string) (string, error) {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

func newJob(id, text, source string) *Job {
	text = strings.TrimSpace(text)
	return &Job{ID: id, Title: TitleFromText(text), Text: text, Source: source}
}

func decodeJobs(raw []byte, fallbackID, source string) ([]*Job, error) {
	trimmed := strings.TrimSpace(string(raw))

	var items []*Job
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode job file %q: %w", source, err)
		}
	} else {
		var job Job
		if err := json.Unmarshal(raw, &job); err != nil {
			return nil, fmt.Errorf("decode job file %q: %w", source, err)
		}
		items = []*Job{&job}
	}

	out := make([]*Job, 0, len(items))
	for i, job := range items {
		if job == nil || strings.TrimSpace(job.Text) == "" {
			continue
		}
		if job.ID == "" {
			job.ID = fallbackID
			if len(items) > 1 {
				job.ID = fmt.Sprintf("%s-%d", fallbackID, i+1)
			}
		}
		if job.Title == "" {
			job.Title = TitleFromText(job.Text)
		}
		job.Text = strings.TrimSpace(job.Text)
		job.Source = source
		out = append(out, job)
	}

	return out, nil
}
