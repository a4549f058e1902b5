package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/ats-scorer/internal/ai"
	"github.com/spigell/ats-scorer/internal/ats"
)

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type callRecord struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeModels struct {
	mu    sync.Mutex
	calls []callRecord
	queue []fakeResponse
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, callRecord{model: model, contents: contents, config: config})
	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: text},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     100,
			CandidatesTokenCount: 20,
			TotalTokenCount:      120,
		},
	}
}

func noWait(t *testing.T) {
	t.Helper()
	original := waitFor
	waitFor = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { waitFor = original })
}

func TestGeneratorComplete(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse(`{"score": 80}`), nil)

	g := newGenerator(models, Config{Model: "gemini-pro"}, zap.NewNop())

	completion, err := g.Complete(context.Background(), ai.Request{
		System:    "system",
		Prompt:    "  message  ",
		JSON:      true,
		MaxTokens: 512,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if completion.Text != `{"score": 80}` {
		t.Fatalf("unexpected output: %q", completion.Text)
	}
	if completion.Provider != ProviderName || completion.Model != "gemini-pro" {
		t.Fatalf("unexpected provider/model: %s/%s", completion.Provider, completion.Model)
	}
	if completion.Usage.PromptTokens != 100 || completion.Usage.CompletionTokens != 20 || completion.Usage.TotalTokens != 120 {
		t.Fatalf("unexpected usage: %+v", completion.Usage)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != "gemini-pro" {
		t.Fatalf("unexpected model: %s", call.model)
	}
	if call.config == nil || call.config.SystemInstruction == nil {
		t.Fatalf("expected system instruction to be set")
	}
	if got := call.config.SystemInstruction.Parts[0].Text; got != "system" {
		t.Fatalf("unexpected system instruction: %q", got)
	}
	if call.config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected json mime type, got %q", call.config.ResponseMIMEType)
	}
	if call.config.MaxOutputTokens != 512 {
		t.Fatalf("unexpected max output tokens: %d", call.config.MaxOutputTokens)
	}
	if got := call.contents[0].Parts[0].Text; got != "message" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	noWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	models.enqueue(textResponse("retry ok"), nil)

	g := newGenerator(models, Config{MaxRetries: 2}, zap.NewNop())

	completion, err := g.Complete(context.Background(), ai.Request{Prompt: "msg"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if completion.Text != "retry ok" {
		t.Fatalf("unexpected output: %q", completion.Text)
	}
	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	noWait(t)

	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	models.enqueue(nil, tempErr)
	models.enqueue(nil, tempErr)

	g := newGenerator(models, Config{MaxRetries: 2}, zap.NewNop())

	_, err := g.Complete(context.Background(), ai.Request{Prompt: "msg"})
	if ats.Classify(err) != ats.ClassTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestGeneratorSingleAttemptByDefault(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})

	g := newGenerator(models, Config{}, zap.NewNop())

	if _, err := g.Complete(context.Background(), ai.Request{Prompt: "msg"}); err == nil {
		t.Fatal("expected error")
	}
	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
	if g.Model() != defaultModel {
		t.Fatalf("expected default model, got %s", g.Model())
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	})

	g := newGenerator(models, Config{MaxRetries: 3}, zap.NewNop())

	if _, err := g.Complete(context.Background(), ai.Request{Prompt: "msg"}); err == nil {
		t.Fatal("expected error when quota delay too long")
	}
	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestGeneratorErrorClasses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		resp   *genai.GenerateContentResponse
		expect string
	}{
		{
			name:   "unauthorized",
			err:    genai.APIError{Code: http.StatusForbidden, Status: "PERMISSION_DENIED"},
			expect: ats.ClassConfiguration,
		},
		{
			name:   "invalid key",
			err:    genai.APIError{Code: http.StatusBadRequest, Message: "API key not valid. Please pass a valid API key."},
			expect: ats.ClassConfiguration,
		},
		{
			name:   "network",
			err:    errors.New("dial tcp: connection refused"),
			expect: ats.ClassTransport,
		},
		{
			name:   "empty text",
			resp:   &genai.GenerateContentResponse{},
			expect: ats.ClassResponseFormat,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			models := &fakeModels{}
			models.enqueue(tc.resp, tc.err)

			_, err := newGenerator(models, Config{}, nil).Complete(context.Background(), ai.Request{Prompt: "msg"})
			if got := ats.Classify(err); got != tc.expect {
				t.Fatalf("expected %q, got %q (%v)", tc.expect, got, err)
			}
		})
	}
}

func TestGeneratorValidation(t *testing.T) {
	if _, err := NewGenerator(context.Background(), Config{APIKey: "  "}, nil); ats.Classify(err) != ats.ClassConfiguration {
		t.Fatalf("expected configuration error for missing key, got %v", err)
	}

	var nilGenerator *Generator
	if _, err := nilGenerator.Complete(context.Background(), ai.Request{Prompt: "msg"}); ats.Classify(err) != ats.ClassConfiguration {
		t.Fatalf("expected configuration error for nil generator, got %v", err)
	}

	g := newGenerator(&fakeModels{}, Config{}, nil)
	if _, err := g.Complete(context.Background(), ai.Request{Prompt: " "}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestParseRetryAfter(t *testing.T) {
	d, ok := parseRetryAfter("Please retry in 2.5s.")
	if !ok || d != 2500*time.Millisecond {
		t.Fatalf("unexpected delay: %v %v", d, ok)
	}

	if _, ok := parseRetryAfter("quota exhausted"); ok {
		t.Fatal("expected no delay")
	}
}
