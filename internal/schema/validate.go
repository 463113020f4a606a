package schema

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/kolekta/extract-cli/internal/model"
)

// Validator re-derives a structural JSON schema from a FormSchema and
// reports which required fields are absent or empty in a merged result.
// Structural type mismatches are logged but never surfaced: the pipeline
// always returns best-effort data.
type Validator struct {
	schema   model.FormSchema
	compiled *jsonschema.Schema
}

// NewValidator compiles the derived structural schema.
func NewValidator(s model.FormSchema) (*Validator, error) {
	doc := structuralSchema(s)
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, eris.Wrap(err, "schema: marshal structural schema")
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource("form.json", bytes.NewReader(b)); err != nil {
		return nil, eris.Wrap(err, "schema: add structural schema resource")
	}
	compiled, err := compiler.Compile("form.json")
	if err != nil {
		return nil, eris.Wrap(err, "schema: compile structural schema")
	}

	return &Validator{schema: s, compiled: compiled}, nil
}

// structuralSchema maps field types to a draft-7 document.
// text/textarea/select/date map to string, number to number, boolean to
// boolean, multiselect to array; anything else validates as string.
func structuralSchema(s model.FormSchema) map[string]any {
	props := make(map[string]any, len(s.Fields))
	var required []string
	for _, f := range s.Fields {
		var jsType string
		switch f.Type {
		case model.TypeNumber:
			jsType = "number"
		case model.TypeBoolean:
			jsType = "boolean"
		case model.TypeMultiselect:
			jsType = "array"
		default:
			jsType = "string"
		}
		p := map[string]any{"type": []any{jsType, "null"}}
		if len(f.Options) > 0 && f.Type == model.TypeSelect {
			// Enum is advisory only; unmatched raw values still pass through.
			p["examples"] = f.Options
		}
		props[f.ID] = p
		if f.Required {
			required = append(required, f.ID)
		}
	}
	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

// MissingRequired returns the ids of required fields whose merged value
// is absent or empty. Other violations reported by the structural schema
// are logged and dropped.
func (v *Validator) MissingRequired(fields model.Fields) []string {
	// The compiled schema only accepts JSON-decoded values, so native Go
	// types like []string round-trip through encoding first.
	if b, err := json.Marshal(fields); err == nil {
		var doc any
		if err := json.Unmarshal(b, &doc); err == nil {
			if err := v.compiled.Validate(doc); err != nil {
				zap.L().Debug("schema: structural validation reported issues", zap.Error(err))
			}
		}
	}

	missing := make([]string, 0)
	for _, f := range v.schema.Required() {
		val, present := fields[f.ID]
		if !present || model.IsEmptyValue(val) {
			missing = append(missing, f.ID)
		}
	}
	return missing
}
