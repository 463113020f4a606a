// Package extract drives the extraction pipeline: provider routing,
// prompt construction, the orchestrated model call with tolerant parsing
// and a single retry, heuristic merging, and usage accounting.
package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/kolekta/extract-cli/internal/provider"
)

// routeTarget is a resolved (provider, concrete model) pair.
type routeTarget struct {
	Provider string
	Model    string
}

// modelAliases maps friendly model names to concrete targets. Checked
// before provider names and family prefixes.
var modelAliases = map[string]routeTarget{
	"gpt-4o":              {Provider: "openai", Model: "gpt-4o"},
	"gpt-4o-mini":         {Provider: "openai", Model: "gpt-4o-mini"},
	"gpt-5":               {Provider: "openai", Model: "gpt-5"},
	"groq-llama-maverick": {Provider: "groq", Model: "meta-llama/llama-4-maverick-17b-128e-instruct"},
	"groq-llama-scout":    {Provider: "groq", Model: "meta-llama/llama-4-scout-17b-16e-instruct"},
	"groq-qwen3-32b":      {Provider: "groq", Model: "qwen/qwen3-32b"},
	"claude-sonnet":       {Provider: "anthropic", Model: "claude-sonnet-4-5-20250929"},
	"claude-haiku":        {Provider: "anthropic", Model: "claude-haiku-4-5-20251001"},
}

// familyPrefix routes recognizable model-family hints to a provider with
// the hint kept as a literal model override. Order matters: first match
// wins.
type familyPrefix struct {
	Prefix   string
	Provider string
}

var familyPrefixes = []familyPrefix{
	{"gpt-", "openai"},
	{"chatgpt", "openai"},
	{"o1", "openai"},
	{"claude", "anthropic"},
	{"meta-llama/", "groq"},
	{"llama", "groq"},
	{"qwen", "groq"},
	{"mixtral", "groq"},
}

// Router selects a provider and optional concrete model for a request.
type Router struct {
	registry        *provider.Registry
	defaultProvider string
}

// NewRouter creates a Router over the configured provider set.
func NewRouter(registry *provider.Registry, defaultProvider string) *Router {
	return &Router{registry: registry, defaultProvider: defaultProvider}
}

// Pick resolves a caller preference hint to (providerName, modelOverride).
// Resolution order: friendly alias, provider name, model-family prefix,
// configured default. Unknown hints fall back to the default silently.
// When needsVision is set and the resolved provider lacks vision, the
// first vision-capable provider is substituted and the override cleared:
// capability takes precedence over preference.
func (r *Router) Pick(hint string, needsVision bool) (string, string) {
	name, override := r.resolve(strings.TrimSpace(hint))

	if needsVision {
		adapter := r.registry.Get(name)
		if adapter == nil || !adapter.SupportsVision() {
			if vis := r.registry.FirstVision(); vis != nil {
				zap.L().Debug("router: vision fallback",
					zap.String("requested", name),
					zap.String("substituted", vis.Name()),
				)
				return vis.Name(), ""
			}
		}
	}

	return name, override
}

func (r *Router) resolve(hint string) (string, string) {
	if hint == "" {
		return r.defaultProvider, ""
	}

	if target, ok := modelAliases[strings.ToLower(hint)]; ok && r.registry.Has(target.Provider) {
		return target.Provider, target.Model
	}

	if r.registry.Has(hint) {
		return hint, ""
	}

	lower := strings.ToLower(hint)
	for _, fp := range familyPrefixes {
		if strings.HasPrefix(lower, fp.Prefix) && r.registry.Has(fp.Provider) {
			return fp.Provider, hint
		}
	}

	zap.L().Debug("router: unknown preference hint, using default",
		zap.String("hint", hint),
		zap.String("default", r.defaultProvider),
	)
	return r.defaultProvider, ""
}
