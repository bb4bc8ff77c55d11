package backend

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// APIError is the typed failure for any backend call. Status 0 means the
// request never reached the backend.
type APIError struct {
	Status  int
	Message string
	Payload json.RawMessage
}

func (e *APIError) Error() string {
	return e.Message
}

// FieldErrors carries structured per-field validation failures from client
// creation, plus an optional general message.
type FieldErrors struct {
	Fields  map[string]string
	Message string
}

func (e *FieldErrors) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("validación fallida en %d campos", len(e.Fields))
}

// General error messages sometimes embed the offending field as
// "... campo <nombre> ...". Extracting it lets the UI headline the field
// instead of showing a wall of text.
var embeddedFieldRe = regexp.MustCompile(`(?i)campo\s+([a-zA-Z_]+)`)

// ExtractFieldName pulls an embedded field name out of a general error
// message, if present.
func ExtractFieldName(message string) (string, bool) {
	match := embeddedFieldRe.FindStringSubmatch(message)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// decodeFieldErrors inspects a 4xx payload for {"errors": {field: msg}} or
// a general {"error": "..."} and upgrades it to *FieldErrors. Returns nil
// when the payload has neither shape.
func decodeFieldErrors(apiErr *APIError) *FieldErrors {
	if apiErr.Status < 400 || apiErr.Status >= 500 || len(apiErr.Payload) == 0 {
		return nil
	}
	var envelope struct {
		Errors map[string]any `json:"errors"`
		Error  string         `json:"error"`
	}
	if err := json.Unmarshal(apiErr.Payload, &envelope); err != nil {
		return nil
	}
	if len(envelope.Errors) > 0 {
		fields := make(map[string]string, len(envelope.Errors))
		for field, detail := range envelope.Errors {
			switch v := detail.(type) {
			case string:
				fields[field] = v
			case []any:
				if len(v) > 0 {
					if s, ok := v[0].(string); ok {
						fields[field] = s
						continue
					}
				}
				fields[field] = apiErr.Message
			default:
				fields[field] = apiErr.Message
			}
		}
		return &FieldErrors{Fields: fields}
	}
	if envelope.Error != "" {
		fieldErr := &FieldErrors{Message: envelope.Error, Fields: map[string]string{}}
		if field, ok := ExtractFieldName(envelope.Error); ok {
			fieldErr.Fields[field] = envelope.Error
		}
		return fieldErr
	}
	return nil
}
