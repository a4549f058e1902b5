package jobs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectory(t *testing.T) {
	t.Parallel()

	jobs, err := Load(filepath.Join("testdata", "postings"))
	require.NoError(t, err)

	assert.Equal(t, []string{"backend", "data-1", "batch-2", "frontend"}, jobs.IDs())

	backend := jobs.FindByID("backend")
	require.NotNil(t, backend)
	assert.Equal(t, "Senior Backend Engineer", backend.Title)
	assert.Contains(t, backend.Text, "Requirements:\n- Go")

	platform := jobs.FindByID("batch-2")
	require.NotNil(t, platform)
	assert.Equal(t, "Platform Engineer", platform.Title)

	frontend := jobs.FindByID("frontend")
	require.NotNil(t, frontend)
	assert.Equal(t, "Frontend Developer", frontend.Title)
	assert.Contains(t, frontend.Text, "React")
	assert.Contains(t, frontend.Text, "- TypeScript")
	assert.NotContains(t, frontend.Text, "<li>")
}

func TestLoadSingleFile(t *testing.T) {
	t.Parallel()

	jobs, err := Load(filepath.Join("testdata", "postings", "backend.md"))
	require.NoError(t, err)
	require.Equal(t, 1, jobs.Len())
	assert.Equal(t, filepath.Join("testdata", "postings", "backend.md"), jobs.Items[0].Source)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join("testdata", "missing"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"text":`), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestExclude(t *testing.T) {
	t.Parallel()

	jobs := &Jobs{Items: []*Job{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}}

	original := jobs.Items

	removed := jobs.Exclude([]string{"c", "a", "zzz"})

	assert.Equal(t, []string{"a", "c"}, removed)
	assert.Equal(t, []string{"b", "d"}, jobs.IDs())
	assert.Equal(t, "a", original[0].ID, "previous slice must not be rewritten")
	assert.Equal(t, "c", original[2].ID)

	blank := &Jobs{Items: []*Job{{ID: "x", Text: " "}, {ID: "x", Text: "Go developer"}}}
	removed = blank.RemoveFunc(func(job *Job) bool { return job.Text == " " })
	assert.Equal(t, []string{"x"}, removed)
	require.Len(t, blank.Items, 1)
	assert.Equal(t, "Go developer", blank.Items[0].Text)
}

func TestLoadMakesIDsUnique(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backend.md"), []byte("Backend Engineer, Go"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backend.txt"), []byte("Backend Engineer, Cobol"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backend.json"), []byte(`{"text": "Backend Engineer, Rust"}`), 0o600))

	list, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"backend", "backend-2", "backend-3"}, list.IDs())
	assert.Equal(t, "Backend Engineer, Rust", list.Items[0].Text)
	assert.Equal(t, "Backend Engineer, Go", list.Items[1].Text)
}

func TestTitleFromText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Staff Engineer", TitleFromText("\n\n  ## Staff Engineer\nbody"))
	assert.Equal(t, "Bold title", TitleFromText("**Bold title**"))
	assert.Empty(t, TitleFromText("  \n "))
}

func TestExcludedRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "excluded.json")

	empty, err := LoadExcluded(path)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	first := ToExcluded([]*Job{{ID: "a", Title: "A"}}, map[string]int{"a": 42})
	require.NoError(t, first.ToFile(path))

	loaded, err := LoadExcluded(path)
	require.NoError(t, err)
	loaded.Append(ToExcluded([]*Job{{ID: "b"}}, nil))
	require.NoError(t, loaded.ToFile(path))

	final, err := LoadExcluded(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, final.IDs())
	assert.Equal(t, 42, final.Items[0].Score)
	assert.False(t, final.Items[0].ExcludedAt.IsZero())
}
