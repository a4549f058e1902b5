package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/ats-scorer/internal/ats"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if yaml != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	}
	return v
}

func TestDecodeConfigDefaults(t *testing.T) {
	config, err := decodeConfig(newTestViper(t, ""))
	require.NoError(t, err)

	assert.False(t, config.AI.Enabled)
	assert.Equal(t, "gemini", config.AI.Provider)
	assert.Equal(t, ats.DefaultTimeout, config.AI.Timeout)
	assert.Equal(t, 1, config.AI.Gemini.MaxRetries)
	assert.Equal(t, ats.DefaultWeights(), *config.Weights)
	assert.Equal(t, 0, config.Ranking.MinimumScore)
	assert.Equal(t, ":8080", config.Server.Addr)
}

func TestDecodeConfigFromYAML(t *testing.T) {
	yaml := `
ai:
  enabled: true
  provider: Anthropic
  timeout: 45s
  anthropic:
    model: claude-test
    max-retries: 3
    temperature: 0.1
weights:
  keywords: 0.5
  skills: 0.3
  experience: 0.2
ranking:
  minimum-score: 60
  exclude-file: dismissed.json
`
	config, err := decodeConfig(newTestViper(t, yaml))
	require.NoError(t, err)

	assert.True(t, config.AI.Enabled)
	assert.Equal(t, "anthropic", config.AI.Provider)
	assert.Equal(t, 45*time.Second, config.AI.Timeout)
	assert.Equal(t, "claude-test", config.AI.provider().Model)
	assert.Equal(t, 3, config.AI.provider().MaxRetries)
	require.NotNil(t, config.AI.provider().Temperature)
	assert.InDelta(t, 0.1, *config.AI.provider().Temperature, 1e-9)
	assert.InDelta(t, 0.5, config.Weights.Keywords, 1e-9)
	assert.Equal(t, 60, config.Ranking.MinimumScore)
	assert.Equal(t, "dismissed.json", config.Ranking.ExcludeFile)
}

func TestDecodeConfigFromEnv(t *testing.T) {
	t.Setenv("ATS_AI_PROVIDER", "anthropic")
	t.Setenv("ATS_RANKING_MINIMUM_SCORE", "40")
	t.Setenv("ATS_AI_TIMEOUT", "5s")

	config, err := decodeConfig(newTestViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", config.AI.Provider)
	assert.Equal(t, 40, config.Ranking.MinimumScore)
	assert.Equal(t, 5*time.Second, config.AI.Timeout)
}

func TestDecodeConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown provider", yaml: "ai:\n  provider: openai\n"},
		{name: "timeout too short", yaml: "ai:\n  timeout: 500ms\n"},
		{name: "timeout too long", yaml: "ai:\n  timeout: 5m\n"},
		{name: "weights do not sum to one", yaml: "weights:\n  keywords: 0.6\n  skills: 0.4\n  experience: 0.2\n"},
		{name: "negative weight", yaml: "weights:\n  keywords: -0.2\n  skills: 1\n  experience: 0.2\n"},
		{name: "minimum score out of range", yaml: "ranking:\n  minimum-score: 150\n"},
		{name: "too many retries", yaml: "ai:\n  gemini:\n    max-retries: 50\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeConfig(newTestViper(t, tt.yaml))
			require.Error(t, err)
			assert.Equal(t, ats.ClassConfiguration, ats.Classify(err))
		})
	}
}

func TestNewServiceRuleBasedOnly(t *testing.T) {
	config, err := decodeConfig(newTestViper(t, "ai:\n  enabled: true\n  gemini:\n    api-key: test-key\n"))
	require.NoError(t, err)

	svc, err := newService(context.Background(), config, zap.NewNop(), true)
	require.NoError(t, err)
	assert.False(t, svc.AIEnabled())

	config.AI.Enabled = false
	svc, err = newService(context.Background(), config, zap.NewNop(), false)
	require.NoError(t, err)
	assert.False(t, svc.AIEnabled())
}

func TestNewServiceWithoutKeyFallsBackToRules(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	config, err := decodeConfig(newTestViper(t, "ai:\n  enabled: true\n  provider: gemini\n"))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.WarnLevel)
	svc, err := newService(context.Background(), config, zap.New(core), false)
	require.NoError(t, err)

	assert.False(t, svc.AIEnabled())
	entries := logs.FilterMessage("skipping ai scoring").All()
	require.Len(t, entries, 1)
	assert.Equal(t, ats.ClassConfiguration, entries[0].ContextMap()["error_class"])
}

func TestNewServiceWithAnthropic(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "anthropic.key")
	require.NoError(t, os.WriteFile(keyFile, []byte("sk-test\n"), 0o600))

	config, err := decodeConfig(newTestViper(t, "ai:\n  enabled: true\n  provider: anthropic\n  anthropic:\n    api-key-file: "+keyFile+"\n"))
	require.NoError(t, err)

	svc, err := newService(context.Background(), config, zap.NewNop(), false)
	require.NoError(t, err)
	assert.True(t, svc.AIEnabled())
}

func TestLoadSingleJob(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "backend.md")
	require.NoError(t, os.WriteFile(single, []byte("# Backend Engineer\nRequired Skills: Go"), 0o600))

	job, err := loadSingleJob(single)
	require.NoError(t, err)
	assert.Equal(t, "backend", job.ID)
	assert.Equal(t, "Backend Engineer", job.Title)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "frontend.txt"), []byte("Frontend Engineer"), 0o600))
	_, err = loadSingleJob(dir)
	assert.ErrorContains(t, err, "use the rank command")

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("   "), 0o600))
	_, err = loadSingleJob(empty)
	assert.ErrorContains(t, err, "no job description")
}

func TestWriteJSON(t *testing.T) {
	var compact, pretty bytes.Buffer

	require.NoError(t, writeJSON(&compact, ats.ZeroResult(), false))
	require.NoError(t, writeJSON(&pretty, ats.ZeroResult(), true))

	assert.Equal(t, 1, strings.Count(compact.String(), "\n"))
	assert.Contains(t, pretty.String(), "\n  \"score\": 0")
	assert.JSONEq(t, compact.String(), pretty.String())
}

func TestResolveVersion(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })

	version = "v1.2.3"
	assert.Equal(t, "v1.2.3", resolveVersion())
}
