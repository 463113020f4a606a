package model

import "strings"

// FieldType enumerates the value kinds a schema field may declare.
// Unknown types are treated as text for parsing and validation.
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeTextarea    FieldType = "textarea"
	TypeNumber      FieldType = "number"
	TypeBoolean     FieldType = "boolean"
	TypeDate        FieldType = "date"
	TypeSelect      FieldType = "select"
	TypeMultiselect FieldType = "multiselect"
)

// FieldSpec describes a single field in a caller-supplied form schema.
type FieldSpec struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
	Description string    `json:"description,omitempty"`
}

// FormSchema is an ordered, immutable field list constructed once per
// request by the schema normalizer.
type FormSchema struct {
	Fields []FieldSpec

	byID     map[string]*FieldSpec
	required []*FieldSpec
}

// NewFormSchema creates a FormSchema with indexed lookups.
func NewFormSchema(fields []FieldSpec) FormSchema {
	s := FormSchema{
		Fields: fields,
		byID:   make(map[string]*FieldSpec, len(fields)),
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		s.byID[f.ID] = f
		if f.Required {
			s.required = append(s.required, f)
		}
	}
	return s
}

// ByID returns the field spec for the given id, or nil if not found.
func (s FormSchema) ByID(id string) *FieldSpec {
	return s.byID[id]
}

// Required returns all required field specs in schema order.
func (s FormSchema) Required() []*FieldSpec {
	return s.required
}

// Fields is a field-id to extracted-value mapping. Value dynamic types
// follow the owning FieldSpec: string, float64, bool, []string, or nil
// for "unknown".
type Fields map[string]any

// DefaultValue returns the type-appropriate empty value for a field.
func DefaultValue(t FieldType) any {
	switch t {
	case TypeNumber, TypeBoolean:
		return nil
	case TypeMultiselect:
		return []string{}
	default:
		return ""
	}
}

// IsEmptyValue reports whether v counts as "no value" for merge and
// required-field purposes.
func IsEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	default:
		return false
	}
}
