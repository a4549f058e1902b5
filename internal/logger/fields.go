package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the AI model identifier.
	FieldModel = "ai_model"
	// FieldStrategy names the scoring strategy that produced or attempted a result.
	FieldStrategy = "ats_strategy"
	// FieldErrorClass is the error class reported by ats.Classify.
	FieldErrorClass = "error_class"
	FieldRequestID  = "request_id"
	FieldJobID      = "job_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace
// and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns the provider and model fields. Empty values are skipped.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the provider and model fields to the logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// ScoringFields describes a failed or completed scoring attempt.
func ScoringFields(strategy, errorClass string) []zap.Field {
	return StringFields(
		StringField{Key: FieldStrategy, Value: strategy},
		StringField{Key: FieldErrorClass, Value: errorClass},
	)
}

// Preview shortens s to limit runes, appending an ellipsis when truncated.
func Preview(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
