package resume

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// InputError reports a resume payload that cannot be interpreted as a resume object.
type InputError struct {
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid resume input: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid resume input: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// Decode converts a loosely typed payload into Data.
//
// Accepted inputs are nil (absent resume, returns nil), Data, *Data, a JSON
// object as map[string]any, or raw JSON bytes. Anything else is an InputError.
func Decode(v any) (*Data, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case *Data:
		return val, nil
	case Data:
		return &val, nil
	case json.RawMessage:
		return decodeJSON(val)
	case []byte:
		return decodeJSON(val)
	case map[string]any:
		return decodeMap(val)
	default:
		return nil, &InputError{Message: fmt.Sprintf("resume must be an object, got %T", v)}
	}
}

// Load reads a JSON resume from path.
func Load(path string) (*Data, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("resume path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume file %q: %w", path, err)
	}

	data, err := decodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("resume file %q: %w", path, err)
	}

	return data, nil
}

func decodeJSON(raw []byte) (*Data, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &InputError{Message: "resume is not valid JSON", Cause: err}
	}

	return Decode(payload)
}

func decodeMap(m map[string]any) (*Data, error) {
	var data Data

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &data,
	})
	if err != nil {
		return nil, fmt.Errorf("create resume decoder: %w", err)
	}

	if err := decoder.Decode(m); err != nil {
		return nil, &InputError{Message: "resume fields have unexpected types", Cause: err}
	}

	return &data, nil
}
