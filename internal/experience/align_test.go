package experience

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/ats-scorer/internal/resume"
	"github.com/spigell/ats-scorer/internal/textproc"
)

func newAligner() *Aligner {
	return NewAligner(textproc.NewExtractor(textproc.NewNormalizer(textproc.DefaultVocabulary())))
}

func TestInferTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		job    string
		expect string
	}{
		{
			name:   "looking for phrase",
			job:    "We are looking for a Senior Backend Engineer to join our team.",
			expect: "Senior Backend Engineer",
		},
		{
			name:   "explicit position line",
			job:    "Position: Staff Data Scientist\nLocation: Remote",
			expect: "Staff Data Scientist",
		},
		{
			name:   "role noun fallback",
			job:    "Acme is hiring a Platform Engineer. You will build things.",
			expect: "Platform Engineer",
		},
		{
			name:   "nothing title-like",
			job:    "Great culture and snacks.",
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, InferTitle(tt.job))
		})
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	data := &resume.Data{
		Experience: []resume.Experience{{
			Title:   "Senior Backend Engineer",
			Company: "Acme",
			Bullets: []string{"Built Python services", "Ran Docker in production"},
		}},
	}

	// Title words: backend and engineer both match.
	// Keywords: position, backend, engineer, python, docker, kafka; four of six match.
	score := newAligner().Score(data, "Position: Backend Engineer\nPython Docker Kafka")
	assert.InDelta(t, 80.0, score, 0.001)
}

func TestScoreWithoutTitle(t *testing.T) {
	t.Parallel()

	data := &resume.Data{
		Experience: []resume.Experience{{Title: "Developer", Bullets: []string{"python scripts"}}},
	}

	assert.InDelta(t, 30.0, newAligner().Score(data, "Python Docker"), 0.001)
}

func TestScoreWithoutExperience(t *testing.T) {
	t.Parallel()

	a := newAligner()
	assert.Zero(t, a.Score(nil, "Backend Engineer"))
	assert.Zero(t, a.Score(&resume.Data{Skills: []string{"go"}}, "Backend Engineer"))
}

func TestScoreTitleUsesBestEntry(t *testing.T) {
	t.Parallel()

	data := &resume.Data{
		Experience: []resume.Experience{
			{Title: "Backend Developer"},
			{Title: "Platform Engineer"},
		},
	}

	// Title: each entry covers one of two words (50).
	// Keywords: backend and engineer of position, backend, engineer, kafka (50).
	assert.InDelta(t, 50.0, newAligner().Score(data, "Position: Backend Engineer\nKafka"), 0.001)
}
