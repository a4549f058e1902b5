package ai

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/ats-scorer/internal/ats"
)

//go:embed response.schema.json
var responseSchemaJSON string

var responseSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchemaJSON))
})

func checkSchema(payload map[string]any) error {
	schema, err := responseSchema()
	if err != nil {
		return fmt.Errorf("load response schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return &ats.ValidationError{Message: "response could not be checked", Err: err}
	}
	if result.Valid() {
		return nil
	}

	fields := make([]string, 0, len(result.Errors()))
	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fields = append(fields, field)
		messages = append(messages, desc.Description())
	}

	return &ats.ValidationError{
		Field:   strings.Join(fields, ","),
		Message: strings.Join(messages, "; "),
	}
}
