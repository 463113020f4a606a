// Package schema normalizes caller-supplied form schemas and validates
// merged extraction results against them.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/kolekta/extract-cli/internal/model"
)

// ErrorKind classifies schema normalization failures.
type ErrorKind string

const (
	KindInvalidJSON   ErrorKind = "invalid_json"
	KindMissingFields ErrorKind = "missing_fields"
	KindInvalidField  ErrorKind = "invalid_field"
)

// Error is a malformed-schema error. It always aborts a request before
// any heuristic or model call.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Kind, e.Detail)
}

// Normalize validates and canonicalizes a schema value of unknown shape
// into a FormSchema. Accepted shapes: an object with a "fields" list, a
// JSON-encoded string or byte slice of either shape, or a bare list of
// field objects.
func Normalize(in any) (model.FormSchema, error) {
	var zero model.FormSchema

	switch v := in.(type) {
	case []byte:
		in = string(v)
	case json.RawMessage:
		in = string(v)
	}

	if s, ok := in.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return zero, &Error{Kind: KindInvalidJSON, Detail: err.Error()}
		}
		in = decoded
	}

	if list, ok := in.([]any); ok {
		in = map[string]any{"fields": list}
	}

	obj, ok := in.(map[string]any)
	if !ok {
		return zero, &Error{Kind: KindMissingFields, Detail: "form schema must be an object with 'fields'"}
	}

	rawFields, ok := obj["fields"].([]any)
	if !ok {
		return zero, &Error{Kind: KindMissingFields, Detail: "form schema 'fields' must be a list"}
	}

	fields := make([]model.FieldSpec, 0, len(rawFields))
	seen := make(map[string]bool, len(rawFields))
	for i, rf := range rawFields {
		fm, ok := rf.(map[string]any)
		if !ok {
			return zero, &Error{Kind: KindInvalidField, Detail: fmt.Sprintf("field %d is not an object", i)}
		}

		id, idOK := fm["id"].(string)
		ftype, typeOK := fm["type"].(string)
		if !idOK || !typeOK || id == "" {
			return zero, &Error{Kind: KindInvalidField, Detail: fmt.Sprintf("field %d needs string 'id' and 'type'", i)}
		}
		if seen[id] {
			return zero, &Error{Kind: KindInvalidField, Detail: fmt.Sprintf("duplicate field id %q", id)}
		}
		seen[id] = true

		spec := model.FieldSpec{ID: id, Type: model.FieldType(ftype)}

		if rawReq, present := fm["required"]; present {
			req, boolOK := rawReq.(bool)
			if !boolOK {
				return zero, &Error{Kind: KindInvalidField, Detail: fmt.Sprintf("field %q: 'required' must be boolean", id)}
			}
			spec.Required = req
		}

		if opts, present := fm["options"].([]any); present {
			for _, o := range opts {
				spec.Options = append(spec.Options, fmt.Sprintf("%v", o))
			}
		}
		if desc, present := fm["description"].(string); present {
			spec.Description = desc
		}

		fields = append(fields, spec)
	}

	return model.NewFormSchema(fields), nil
}
