package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolekta/extract-cli/internal/model"
)

func assertSchemaEqual(t *testing.T, want, got model.FormSchema) {
	t.Helper()
	diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(model.FormSchema{}))
	assert.Empty(t, diff)
}

func TestNormalizeObjectForm(t *testing.T) {
	raw := []byte(`{
		"fields": [
			{"id": "patientName", "type": "text", "required": true, "description": "full name"},
			{"id": "testResult", "type": "select", "options": ["Positive", "Negative"]}
		]
	}`)

	got, err := Normalize(raw)
	require.NoError(t, err)

	want := model.NewFormSchema([]model.FieldSpec{
		{ID: "patientName", Type: model.TypeText, Required: true, Description: "full name"},
		{ID: "testResult", Type: model.TypeSelect, Options: []string{"Positive", "Negative"}},
	})
	assertSchemaEqual(t, want, got)

	require.NotNil(t, got.ByID("patientName"))
	assert.Len(t, got.Required(), 1)
}

func TestNormalizeBareListWrapped(t *testing.T) {
	raw := `[{"id": "notes", "type": "textarea"}]`

	got, err := Normalize(raw)
	require.NoError(t, err)

	want := model.NewFormSchema([]model.FieldSpec{
		{ID: "notes", Type: model.TypeTextarea},
	})
	assertSchemaEqual(t, want, got)
}

func TestNormalizeDecodedValue(t *testing.T) {
	in := map[string]any{
		"fields": []any{
			map[string]any{"id": "patientAge", "type": "number", "required": false},
		},
	}

	got, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, model.TypeNumber, got.ByID("patientAge").Type)
}

func TestNormalizeRoundTrip(t *testing.T) {
	raw := `{"fields": [
		{"id": "a", "type": "text", "required": true},
		{"id": "b", "type": "number"},
		{"id": "c", "type": "multiselect", "options": ["x", "y"]}
	]}`

	first, err := Normalize(raw)
	require.NoError(t, err)
	second, err := Normalize(raw)
	require.NoError(t, err)
	assertSchemaEqual(t, first, second)
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind ErrorKind
	}{
		{"invalid json", "not json at all {", KindInvalidJSON},
		{"not an object", float64(42), KindMissingFields},
		{"fields missing", map[string]any{"title": "x"}, KindMissingFields},
		{"fields not a list", map[string]any{"fields": "oops"}, KindMissingFields},
		{"field not object", map[string]any{"fields": []any{"oops"}}, KindInvalidField},
		{"field missing id", map[string]any{"fields": []any{map[string]any{"type": "text"}}}, KindInvalidField},
		{"field missing type", map[string]any{"fields": []any{map[string]any{"id": "x"}}}, KindInvalidField},
		{"required not bool", map[string]any{"fields": []any{map[string]any{"id": "x", "type": "text", "required": "yes"}}}, KindInvalidField},
		{"duplicate id", map[string]any{"fields": []any{
			map[string]any{"id": "x", "type": "text"},
			map[string]any{"id": "x", "type": "number"},
		}}, KindInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.in)
			require.Error(t, err)
			var sErr *Error
			require.True(t, errors.As(err, &sErr))
			assert.Equal(t, tt.kind, sErr.Kind)
		})
	}
}
