package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPercentage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate []string
		required  []string
		expect    float64
	}{
		{
			name:      "no required skills gives no signal",
			candidate: []string{"go"},
			required:  nil,
			expect:    0,
		},
		{
			name:      "exact matches",
			candidate: []string{"Python", "SQL"},
			required:  []string{"python", "sql", "docker", "kubernetes"},
			expect:    50,
		},
		{
			name:      "candidate contains required",
			candidate: []string{"react.js"},
			required:  []string{"react"},
			expect:    100,
		},
		{
			name:      "required contains candidate",
			candidate: []string{"react"},
			required:  []string{"React.js"},
			expect:    100,
		},
		{
			name:      "empty candidate entries never match",
			candidate: []string{"", "   "},
			required:  []string{"docker"},
			expect:    0,
		},
		{
			name:      "blank required entries are ignored",
			candidate: []string{"go"},
			required:  []string{"", "go"},
			expect:    100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expect, MatchPercentage(tt.candidate, tt.required), 0.001)
		})
	}
}

func TestMissing(t *testing.T) {
	t.Parallel()

	missing := Missing(
		[]string{"Python", "sql"},
		[]string{"Kubernetes", "python", "Docker", "SQL Server"},
	)

	// "sql server" contains "sql", so it counts as covered.
	assert.Equal(t, []string{"kubernetes", "docker"}, missing)
}

func TestMissingWithoutRequirements(t *testing.T) {
	t.Parallel()

	missing := Missing([]string{"go"}, nil)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"go", "rust"}, Normalize([]string{" Go ", "go", "", "RUST"}))
}
