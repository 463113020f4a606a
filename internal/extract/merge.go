package extract

import (
	"fmt"

	"github.com/kolekta/extract-cli/internal/model"
)

// Merge reconciles per-field values from all sources under the fixed
// precedence: model output > generic heuristic > clinical heuristic >
// type-appropriate default. A non-empty model value always wins verbatim.
// The result has exactly one entry per schema field.
func Merge(s model.FormSchema, modelOut map[string]any, generic, clinical model.Fields) model.Fields {
	out := make(model.Fields, len(s.Fields))
	for _, f := range s.Fields {
		if v, ok := modelOut[f.ID]; ok && !model.IsEmptyValue(v) {
			out[f.ID] = normalizeModelValue(v, f.Type)
			continue
		}
		if v, ok := generic[f.ID]; ok && !model.IsEmptyValue(v) {
			out[f.ID] = v
			continue
		}
		if v, ok := clinical[f.ID]; ok && !model.IsEmptyValue(v) {
			out[f.ID] = v
			continue
		}
		out[f.ID] = model.DefaultValue(f.Type)
	}
	return out
}

// normalizeModelValue keeps model values verbatim except for shape: JSON
// arrays decode as []any and are flattened to []string for multiselect
// fields.
func normalizeModelValue(v any, t model.FieldType) any {
	if t != model.TypeMultiselect {
		return v
	}
	switch arr := v.(type) {
	case []string:
		return arr
	case []any:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}
