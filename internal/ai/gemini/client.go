// Package gemini implements ai.Completer on top of the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/ats-scorer/internal/ai"
	"github.com/spigell/ats-scorer/internal/ai/throttle"
	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/logger"
)

const (
	// ProviderName identifies this provider in logs and results.
	ProviderName = "gemini"

	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 1
	baseRetryDelay    = 500 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
)

var retryAfterRe = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

var waitFor = throttle.WaitFor

// Config holds the Gemini client settings.
type Config struct {
	APIKey string
	Model  string
	// MaxRetries is the total number of attempts for transient API errors.
	MaxRetries        int
	RequestsPerMinute int
	Temperature       *float32
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator sends completion requests to Gemini.
type Generator struct {
	models      contentGenerator
	model       string
	maxRetries  int
	temperature *float32
	limiter     *throttle.Limiter
	logger      *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &ats.ConfigurationError{Provider: ProviderName, Message: "api key is required"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &ats.ConfigurationError{Provider: ProviderName, Message: "create genai client", Err: err}
	}

	return newGenerator(client.Models, cfg, log), nil
}

func newGenerator(models contentGenerator, cfg Config, log *zap.Logger) *Generator {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &Generator{
		models:      models,
		model:       model,
		maxRetries:  maxRetries,
		temperature: cfg.Temperature,
		limiter:     throttle.NewLimiter(cfg.RequestsPerMinute),
		logger:      logger.WithCommonFields(log, ProviderName, model),
	}
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// Complete sends the request and returns the concatenated text of the response.
func (g *Generator) Complete(ctx context.Context, req ai.Request) (*ai.Completion, error) {
	if g == nil || g.models == nil {
		return nil, &ats.ConfigurationError{Provider: ProviderName, Message: "generator is not initialized"}
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt must not be empty")
	}

	config := g.contentConfig(req)

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	for attempt := 1; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, &ats.TransportError{Provider: ProviderName, Message: "wait for rate limiter", Err: err}
		}

		resp, err = g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
		if err == nil {
			break
		}

		delay, retryable := retryDelay(err, attempt)
		if !retryable || attempt >= g.maxRetries {
			return nil, classify(err)
		}

		g.logger.Warn("gemini temporary error, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := waitFor(ctx, delay); err != nil {
			return nil, &ats.TransportError{Provider: ProviderName, Message: "wait before retry", Err: err}
		}
	}

	text := responseText(resp)
	if text == "" {
		return nil, &ats.ResponseFormatError{Message: "gemini api returned no text", Err: ats.ErrEmptyResponse}
	}

	completion := &ai.Completion{
		Text:     text,
		Provider: ProviderName,
		Model:    g.model,
	}
	if v := strings.TrimSpace(resp.ModelVersion); v != "" {
		completion.Model = v
	}
	if u := resp.UsageMetadata; u != nil {
		completion.Usage = ai.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	return completion, nil
}

func (g *Generator) contentConfig(req ai.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{Temperature: g.temperature}

	if system := strings.TrimSpace(req.System); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	return config
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// retryDelay reports whether err is transient and how long to wait before the next attempt.
// Quota errors asking for a long pause are not retried.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests:
		if d, ok := parseRetryAfter(apiErr.Message); ok {
			return d, d <= maxRetryDelay
		}
		return throttle.Backoff(attempt, baseRetryDelay, maxRetryDelay), true
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return throttle.Backoff(attempt, baseRetryDelay, maxRetryDelay), true
	default:
		return 0, false
	}
}

func parseRetryAfter(message string) (time.Duration, bool) {
	m := retryAfterRe.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// classify maps SDK errors onto the scoring error classes.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return &ats.ConfigurationError{Provider: ProviderName, Message: fmt.Sprintf("api rejected credentials (%d %s)", apiErr.Code, apiErr.Status), Err: err}
		case apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "api key"):
			return &ats.ConfigurationError{Provider: ProviderName, Message: "api key is not valid", Err: err}
		}
	}

	return &ats.TransportError{Provider: ProviderName, Message: "generate content", Err: err}
}
