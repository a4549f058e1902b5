package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/ranking"
	"github.com/spigell/ats-scorer/internal/resume"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubScorer struct {
	scores map[string]int
	panics bool
}

func (s *stubScorer) ComputeScore(_ context.Context, _ *resume.Data, jobText string) (*ats.Result, error) {
	if s.panics {
		panic("boom")
	}
	result := ats.ZeroResult()
	result.Score = s.scores[jobText]
	result.Strategy = "stub"
	return result, nil
}

func (s *stubScorer) ComputeScoreRaw(ctx context.Context, raw any, jobText string) (*ats.Result, error) {
	data, err := resume.Decode(raw)
	if err != nil {
		return nil, err
	}
	return s.ComputeScore(ctx, data, jobText)
}

func (s *stubScorer) AIEnabled() bool { return false }

const testResume = `{
  "summary": "Backend engineer",
  "skills": ["Go", "PostgreSQL"],
  "experience": [{"title": "Backend Engineer", "company": "Acme", "bullets": ["Built billing APIs in Go"]}]
}`

const testJob = "Backend Engineer\nRequired Skills: Go, Kafka, PostgreSQL"

func do(t *testing.T, engine *gin.Engine, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestScoreWithRuleBasedService(t *testing.T) {
	engine := NewEngine(Options{Scorer: ats.NewService(nil, nil, nil, 0)})

	body, err := json.Marshal(map[string]any{"resume": json.RawMessage(testResume), "jobDescription": testJob})
	require.NoError(t, err)

	rec := do(t, engine, http.MethodPost, "/v1/score", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got ats.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	var data resume.Data
	require.NoError(t, json.Unmarshal([]byte(testResume), &data))
	want, err := ats.NewDefaultRuleBased().Score(context.Background(), &data, testJob)
	require.NoError(t, err)

	assert.Equal(t, ats.StrategyRuleBased, got.Strategy)
	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, want.SkillMatch, got.SkillMatch)
	assert.Equal(t, want.MissingSkills, got.MissingSkills)
}

func TestScoreEmptyResume(t *testing.T) {
	engine := NewEngine(Options{Scorer: ats.NewService(nil, nil, nil, 0)})

	rec := do(t, engine, http.MethodPost, "/v1/score", `{"resume": {}, "jobDescription": "Go developer"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got ats.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, ats.StrategyEmpty, got.Strategy)
	assert.Zero(t, got.Score)
}

func TestScoreRejectsBadInput(t *testing.T) {
	engine := NewEngine(Options{Scorer: ats.NewService(nil, nil, nil, 0)})

	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "resume is a string", body: `{"resume": "I know Go", "jobDescription": "Go developer"}`, code: codeInvalidResume},
		{name: "resume is an array", body: `{"resume": [1, 2], "jobDescription": "Go developer"}`, code: codeInvalidResume},
		{name: "missing job description", body: `{"resume": {}}`, code: codeInvalidRequest},
		{name: "malformed json", body: `{"resume":`, code: codeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, engine, http.MethodPost, "/v1/score", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestRankOrdersAndFilters(t *testing.T) {
	scorer := &stubScorer{scores: map[string]int{"go role": 80, "java role": 20, "rust role": 95}}
	engine := NewEngine(Options{Scorer: scorer, Concurrency: 2})

	body := `{"resume": ` + testResume + `, "minimumScore": 50, "jobs": [
		{"id": "go", "text": "go role"},
		{"text": "java role"},
		{"title": "Rust", "text": "rust role"}
	]}`

	rec := do(t, engine, http.MethodPost, "/v1/rank", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp rankResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Kept)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "job-3", resp.Results[0].Job.ID)
	assert.Equal(t, "Rust", resp.Results[0].Job.Title)
	assert.Equal(t, 95, resp.Results[0].Result.Score)
	assert.Equal(t, "go", resp.Results[1].Job.ID)
}

func TestRankValidation(t *testing.T) {
	engine := NewEngine(Options{Scorer: &stubScorer{}})

	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "no jobs", body: `{"resume": {}, "jobs": []}`, code: codeInvalidRequest},
		{name: "job without text", body: `{"resume": {}, "jobs": [{"id": "a"}]}`, code: codeInvalidRequest},
		{name: "minimum score out of range", body: `{"resume": {}, "minimumScore": 120, "jobs": [{"text": "x"}]}`, code: codeInvalidRequest},
		{name: "resume is a number", body: `{"resume": 3, "jobs": [{"text": "x"}]}`, code: codeInvalidResume},
		{name: "duplicate job ids", body: `{"resume": {}, "jobs": [{"id": "backend", "text": "Go"}, {"id": "backend", "text": "Cobol"}]}`, code: codeInvalidRequest},
		{name: "explicit id repeats a generated one", body: `{"resume": {}, "jobs": [{"text": "Go"}, {"id": "job-1", "text": "Cobol"}]}`, code: codeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, engine, http.MethodPost, "/v1/rank", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	engine := NewEngine(Options{Scorer: &stubScorer{}})

	rec := do(t, engine, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "aiEnabled": false}`, rec.Body.String())
}

func TestRequestIDAndAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	engine := NewEngine(Options{Logger: zap.New(core), Scorer: &stubScorer{}})

	id := uuid.NewString()
	rec := do(t, engine, http.MethodGet, "/healthz", "", RequestIDHeader, id)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, id, fields["request_id"])
	assert.Equal(t, "/healthz", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])

	rec = do(t, engine, http.MethodGet, "/healthz", "", RequestIDHeader, "not-a-uuid")
	generated := rec.Header().Get(RequestIDHeader)
	assert.NotEqual(t, "not-a-uuid", generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	engine := NewEngine(Options{Logger: zap.New(core), Scorer: &stubScorer{panics: true}})

	rec := do(t, engine, http.MethodPost, "/v1/score", `{"resume": {"skills": ["go"]}, "jobDescription": "go"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, codeInternal, body.Code)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, 1, logs.FilterMessage("panic while handling request").Len())
}

func TestRankSkipsExcludeFileStep(t *testing.T) {
	steps := ranking.DefaultSteps()
	ranking.DisableByName(steps, "exclude_file", "not available over http")

	statuses := ranking.Describe(steps)
	require.NotEmpty(t, statuses)
	assert.Equal(t, "exclude_file", statuses[0].Name)
	assert.False(t, statuses[0].Enabled)
}
