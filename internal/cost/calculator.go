// Package cost computes USD cost for LLM token usage from a static
// per-model price table loaded at startup.
package cost

import "strings"

// ModelRate holds per-model token pricing in USD per 1,000 tokens.
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Table maps model identifiers to rates. Read-only after initialization;
// shared by all in-flight requests.
type Table struct {
	rates map[string]ModelRate
}

// NewTable creates a Table from configured rates.
func NewTable(rates map[string]ModelRate) *Table {
	return &Table{rates: rates}
}

// Lookup resolves a model identifier to its rate, trying an exact match
// first and a case-insensitive match second.
func (t *Table) Lookup(modelID string) (ModelRate, bool) {
	if r, ok := t.rates[modelID]; ok {
		return r, true
	}
	lower := strings.ToLower(modelID)
	for k, r := range t.rates {
		if strings.ToLower(k) == lower {
			return r, true
		}
	}
	return ModelRate{}, false
}

// Compute returns the cost for the given token counts, or nil when the
// model has no pricing entry. An unknown model is never guessed at.
func (t *Table) Compute(modelID string, tokensIn, tokensOut int) *float64 {
	rate, ok := t.Lookup(modelID)
	if !ok {
		return nil
	}
	c := (float64(tokensIn)/1000.0)*rate.Input + (float64(tokensOut)/1000.0)*rate.Output
	return &c
}

// DefaultRates returns the default per-model pricing table.
func DefaultRates() map[string]ModelRate {
	return map[string]ModelRate{
		// OpenAI models
		"gpt-4o":      {Input: 0.0025, Output: 0.01},
		"gpt-4o-mini": {Input: 0.00015, Output: 0.0006},
		"gpt-5":       {Input: 0.00125, Output: 0.001},
		// Groq-hosted models
		"meta-llama/llama-4-maverick-17b-128e-instruct": {Input: 0.0002, Output: 0.0006},
		"meta-llama/llama-4-scout-17b-16e-instruct":     {Input: 0.00011, Output: 0.00034},
		"qwen/qwen3-32b":                                {Input: 0.00029, Output: 0.00059},
		// Anthropic models
		"claude-sonnet-4-5-20250929": {Input: 0.003, Output: 0.015},
		"claude-haiku-4-5-20251001":  {Input: 0.0008, Output: 0.004},
	}
}

// EstimateTokens approximates a token count from text length when the
// provider reports no usage: max(1, ceil(len/4)). Empty text is zero.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := (len(text) + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}
