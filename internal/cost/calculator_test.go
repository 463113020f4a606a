package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single char rounds up", "a", 1},
		{"four chars", "abcd", 1},
		{"five chars", "abcde", 2},
		{"eight chars", "abcdefgh", 2},
		{"long text", string(make([]byte, 4000)), 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTokens(tt.text))
		})
	}
}

func TestComputeKnownModel(t *testing.T) {
	table := NewTable(DefaultRates())

	got := table.Compute("gpt-4o", 1000, 500)
	require.NotNil(t, got)
	assert.InDelta(t, 0.0025+0.5*0.01, *got, 1e-9)
}

func TestComputeUnknownModelIsNil(t *testing.T) {
	table := NewTable(DefaultRates())
	assert.Nil(t, table.Compute("some-unlisted-model", 1000, 1000))
}

func TestComputeZeroTokens(t *testing.T) {
	table := NewTable(DefaultRates())
	got := table.Compute("gpt-4o", 0, 0)
	require.NotNil(t, got)
	assert.Zero(t, *got)
}

func TestLookupCaseInsensitive(t *testing.T) {
	table := NewTable(map[string]ModelRate{"GPT-4o": {Input: 1, Output: 2}})

	r, ok := table.Lookup("gpt-4O")
	require.True(t, ok)
	assert.InDelta(t, 1.0, r.Input, 1e-9)
}

func TestDefaultRatesCoverRoutedModels(t *testing.T) {
	table := NewTable(DefaultRates())
	for _, id := range []string{
		"gpt-4o",
		"gpt-4o-mini",
		"meta-llama/llama-4-maverick-17b-128e-instruct",
		"qwen/qwen3-32b",
		"claude-sonnet-4-5-20250929",
		"claude-haiku-4-5-20251001",
	} {
		_, ok := table.Lookup(id)
		assert.True(t, ok, "no rate for %s", id)
	}
}
