// Package ai scores resumes with a large language model.
package ai

import "context"

// Request is a single prompt sent to a model provider.
type Request struct {
	// System is the system instruction.
	System string
	Prompt string
	// JSON asks the provider for a JSON-only response when it supports that mode.
	JSON      bool
	MaxTokens int
}

// Usage is the provider-reported token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is the text returned by a provider.
type Completion struct {
	Text     string
	Provider string
	Model    string
	Usage    Usage
}

// Completer is a text-completion provider.
//
// Implementations report unconfigured or unauthorized clients as
// *ats.ConfigurationError and failed calls as *ats.TransportError.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}
