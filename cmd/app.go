package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/kolekta/extract-cli/internal/cost"
	"github.com/kolekta/extract-cli/internal/extract"
	"github.com/kolekta/extract-cli/internal/model"
	"github.com/kolekta/extract-cli/internal/provider"
	"github.com/kolekta/extract-cli/internal/schema"
)

// buildRegistry constructs adapters for every provider with a configured
// API key.
func buildRegistry() (*provider.Registry, error) {
	var adapters []provider.Adapter
	if cfg.OpenAI.Key != "" {
		adapters = append(adapters, provider.NewOpenAI(cfg.OpenAI.Key, cfg.OpenAI.Model, cfg.OpenAI.RateLimit))
	}
	if cfg.Groq.Key != "" {
		adapters = append(adapters, provider.NewGroq(cfg.Groq.Key, cfg.Groq.Model, cfg.Groq.RateLimit))
	}
	if cfg.Anthropic.Key != "" {
		adapters = append(adapters, provider.NewAnthropic(cfg.Anthropic.Key, cfg.Anthropic.Model, 0))
	}
	if len(adapters) == 0 {
		return nil, eris.New("no provider configured: set at least one API key")
	}
	return provider.NewRegistry(adapters...), nil
}

// buildOrchestrator wires the registry, router, and pricing table.
func buildOrchestrator(registry *provider.Registry) *extract.Orchestrator {
	rates := cost.DefaultRates()
	for id, p := range cfg.Pricing {
		rates[id] = cost.ModelRate{Input: p.Input, Output: p.Output}
	}
	router := extract.NewRouter(registry, cfg.Extract.DefaultProvider)
	return extract.NewOrchestrator(registry, router, cost.NewTable(rates))
}

// loadSchema reads and normalizes a form schema from a JSON file.
func loadSchema(path string) (model.FormSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormSchema{}, eris.Wrapf(err, "read schema %s", path)
	}
	s, err := schema.Normalize(data)
	if err != nil {
		return model.FormSchema{}, eris.Wrap(err, "normalize schema")
	}
	return s, nil
}

// printJSON writes the result to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
