package ats

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/ats-scorer/internal/resume"
)

// ErrEmptyResponse is wrapped by ResponseFormatError when the model returned no text.
var ErrEmptyResponse = errors.New("empty response from model")

// InputError is returned for caller input that cannot be scored, such as a non-object resume.
type InputError = resume.InputError

// ConfigurationError reports an AI collaborator that is missing, unconfigured or unauthorized.
type ConfigurationError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return formatError("ai configuration", e.Provider, e.Message, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// TransportError reports a failed call to the model provider, including timeouts.
type TransportError struct {
	Provider string
	Message  string
	Err      error
}

func (e *TransportError) Error() string {
	return formatError("ai transport", e.Provider, e.Message, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseFormatError reports a model response that could not be parsed into JSON.
type ResponseFormatError struct {
	Message string
	// Body is a truncated copy of the offending response.
	Body string
	Err  error
}

func (e *ResponseFormatError) Error() string {
	return formatError("ai response format", "", e.Message, e.Err)
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }

// ValidationError reports a parsed response with missing or invalid required fields.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return formatError("ai response validation", "", msg, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Error classes reported by Classify.
const (
	ClassConfiguration  = "configuration"
	ClassTransport      = "transport"
	ClassResponseFormat = "response_format"
	ClassValidation     = "validation"
	ClassInput          = "input"
	ClassTimeout        = "timeout"
	ClassCanceled       = "canceled"
	ClassUnknown        = "unknown"
)

// Classify names the class of err for logs and metrics. A nil error yields "".
func Classify(err error) string {
	var (
		configErr    *ConfigurationError
		transportErr *TransportError
		formatErr    *ResponseFormatError
		validErr     *ValidationError
		inputErr     *InputError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &configErr):
		return ClassConfiguration
	case errors.As(err, &transportErr):
		return ClassTransport
	case errors.As(err, &formatErr):
		return ClassResponseFormat
	case errors.As(err, &validErr):
		return ClassValidation
	case errors.As(err, &inputErr):
		return ClassInput
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case errors.Is(err, context.Canceled):
		return ClassCanceled
	default:
		return ClassUnknown
	}
}

func formatError(kind, provider, message string, err error) string {
	prefix := kind
	if provider != "" {
		prefix = fmt.Sprintf("%s (%s)", kind, provider)
	}

	switch {
	case message != "" && err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, message, err)
	case message != "":
		return fmt.Sprintf("%s: %s", prefix, message)
	case err != nil:
		return fmt.Sprintf("%s: %v", prefix, err)
	default:
		return prefix + " error"
	}
}
