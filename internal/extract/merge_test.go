package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kolekta/extract-cli/internal/model"
)

func mergeSchema() model.FormSchema {
	return model.NewFormSchema([]model.FieldSpec{
		{ID: "patientName", Type: model.TypeText, Required: true},
		{ID: "patientAge", Type: model.TypeNumber},
		{ID: "followUpRequired", Type: model.TypeBoolean},
		{ID: "reportedSymptoms", Type: model.TypeMultiselect, Options: []string{"fever", "cough"}},
		{ID: "notes", Type: model.TypeText},
	})
}

func TestMergeModelWins(t *testing.T) {
	s := mergeSchema()
	modelOut := map[string]any{"patientName": "Janet Yakubu"}
	generic := model.Fields{"patientName": "J. Yakubu"}
	clinical := model.Fields{"patientName": "Yakubu"}

	out := Merge(s, modelOut, generic, clinical)
	assert.Equal(t, "Janet Yakubu", out["patientName"])
}

func TestMergePrecedenceChain(t *testing.T) {
	s := mergeSchema()
	modelOut := map[string]any{"patientName": nil, "patientAge": ""}
	generic := model.Fields{"patientAge": float64(34)}
	clinical := model.Fields{"patientName": "Janet Yakubu", "patientAge": float64(99)}

	out := Merge(s, modelOut, generic, clinical)

	// Empty model values defer to heuristics: generic over clinical.
	assert.Equal(t, "Janet Yakubu", out["patientName"])
	assert.Equal(t, float64(34), out["patientAge"])
}

func TestMergeDefaultsForUnmatchedFields(t *testing.T) {
	s := mergeSchema()
	out := Merge(s, nil, nil, nil)

	assert.Len(t, out, len(s.Fields))
	assert.Equal(t, "", out["patientName"])
	assert.Nil(t, out["patientAge"])
	assert.Nil(t, out["followUpRequired"])
	assert.Equal(t, []string{}, out["reportedSymptoms"])
	assert.Equal(t, "", out["notes"])
}

func TestMergeMultiselectFlattening(t *testing.T) {
	s := mergeSchema()

	// JSON arrays decode as []any; the merge normalizes them.
	out := Merge(s, map[string]any{"reportedSymptoms": []any{"fever", "cough"}}, nil, nil)
	assert.Equal(t, []string{"fever", "cough"}, out["reportedSymptoms"])

	// A scalar model value for a multiselect becomes a one-element list.
	out = Merge(s, map[string]any{"reportedSymptoms": "fever"}, nil, nil)
	assert.Equal(t, []string{"fever"}, out["reportedSymptoms"])
}

func TestMergeIgnoresUndeclaredModelKeys(t *testing.T) {
	s := mergeSchema()
	out := Merge(s, map[string]any{"hallucinated": "value"}, nil, nil)

	_, present := out["hallucinated"]
	assert.False(t, present)
	assert.Len(t, out, len(s.Fields))
}

func TestMergeDeterministic(t *testing.T) {
	s := mergeSchema()
	modelOut := map[string]any{"patientName": "Janet Yakubu", "patientAge": float64(34)}
	generic := model.Fields{"notes": "seen at clinic"}
	clinical := model.Fields{"followUpRequired": true}

	first := Merge(s, modelOut, generic, clinical)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Merge(s, modelOut, generic, clinical))
	}
}
