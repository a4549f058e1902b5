// Package claude implements ai.Completer on top of the Anthropic Messages API.
package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/ai"
	"github.com/spigell/ats-scorer/internal/ai/throttle"
	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/logger"
)

const (
	// ProviderName identifies this provider in logs and results.
	ProviderName = "anthropic"

	defaultModel     = anthropic.ModelClaude3_7SonnetLatest
	defaultMaxTokens = 2048
)

// Config holds the Anthropic client settings.
type Config struct {
	APIKey string
	Model  string
	// MaxRetries is the total number of attempts; the SDK retries transient failures.
	MaxRetries        int
	RequestsPerMinute int
	Temperature       *float64
}

type messagesAPI interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Client sends completion requests to Claude models.
type Client struct {
	messages    messagesAPI
	model       string
	temperature *float64
	limiter     *throttle.Limiter
	logger      *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &ats.ConfigurationError{Provider: ProviderName, Message: "api key is required"}
	}

	retries := max(cfg.MaxRetries-1, 0)
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(retries),
	)

	return newClient(&client.Messages, cfg, log), nil
}

func newClient(messages messagesAPI, cfg Config, log *zap.Logger) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = string(defaultModel)
	}

	return &Client{
		messages:    messages,
		model:       model,
		temperature: cfg.Temperature,
		limiter:     throttle.NewLimiter(cfg.RequestsPerMinute),
		logger:      logger.WithCommonFields(log, ProviderName, model),
	}
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Complete sends the request as a single user message and returns the text blocks of the reply.
func (c *Client) Complete(ctx context.Context, req ai.Request) (*ai.Completion, error) {
	if c == nil || c.messages == nil {
		return nil, &ats.ConfigurationError{Provider: ProviderName, Message: "client is not initialized"}
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt must not be empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ats.TransportError{Provider: ProviderName, Message: "wait for rate limiter", Err: err}
	}

	msg, err := c.messages.New(ctx, c.params(req, prompt))
	if err != nil {
		return nil, classify(err)
	}
	if msg == nil {
		return nil, &ats.ResponseFormatError{Message: "anthropic api returned no message", Err: ats.ErrEmptyResponse}
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		if text := strings.TrimSpace(block.Text); text != "" {
			parts = append(parts, text)
		}
	}

	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return nil, &ats.ResponseFormatError{Message: "anthropic api returned no text", Err: ats.ErrEmptyResponse}
	}

	if msg.StopReason == anthropic.StopReasonMaxTokens {
		c.logger.Warn("anthropic response truncated at max tokens", zap.Int64("output_tokens", msg.Usage.OutputTokens))
	}

	completion := &ai.Completion{
		Text:     text,
		Provider: ProviderName,
		Model:    c.model,
		Usage: ai.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
	if m := strings.TrimSpace(string(msg.Model)); m != "" {
		completion.Model = m
	}

	return completion, nil
}

func (c *Client) params(req ai.Request, prompt string) anthropic.MessageNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}

	if system := strings.TrimSpace(req.System); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if c.temperature != nil {
		params.Temperature = anthropic.Float(*c.temperature)
	}

	return params
}

func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &ats.ConfigurationError{Provider: ProviderName, Message: fmt.Sprintf("api rejected credentials (%d)", apiErr.StatusCode), Err: err}
		}
	}

	return &ats.TransportError{Provider: ProviderName, Message: "create message", Err: err}
}
