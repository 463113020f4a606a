// Package provider exposes language-model backends through a uniform
// completion capability. Adapters are constructed once at startup and are
// safe for concurrent use: they hold only credentials, a default model,
// and a client-side rate limiter.
package provider

import (
	"context"
	"fmt"
)

// Descriptor is the static, read-only description of a configured backend.
type Descriptor struct {
	Name           string `json:"name"`
	DefaultModel   string `json:"default_model"`
	SupportsVision bool   `json:"supports_vision"`
}

// Request is a single completion call. Model overrides the adapter's
// default when non-empty. Images are data URLs; OCRBlocks carry
// positioned text from the recognition collaborator.
type Request struct {
	Prompt    string
	Images    []string
	OCRBlocks []OCRBlock
	Model     string
}

// OCRBlock is one positioned text fragment from image recognition.
type OCRBlock struct {
	Text       string  `json:"text"`
	BBox       [4]int  `json:"bbox,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Usage reports token consumption as the backend measured it. Zero
// values mean the backend reported nothing and callers should estimate.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	Model            string
}

// Response is the raw completion output.
type Response struct {
	Text  string
	Usage Usage
}

// Adapter is the uniform completion capability over one backend.
type Adapter interface {
	Name() string
	DefaultModel() string
	SupportsVision() bool
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ImageProcessor is implemented by vision-capable adapters that can turn
// raw image bytes into text and positioned blocks.
type ImageProcessor interface {
	ProcessImage(ctx context.Context, imageBytes []byte, filename string) (string, []OCRBlock, error)
}

// Error wraps a transport, auth, or rate-limit failure from a backend.
// It is fatal for the request: the orchestrator performs no network-level
// retries.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Registry is the process-wide, read-only adapter set in configuration
// order.
type Registry struct {
	adapters []Adapter
	byName   map[string]Adapter
}

// NewRegistry indexes the given adapters. Order is preserved for
// vision-capability fallback.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byName: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		if a == nil {
			continue
		}
		r.adapters = append(r.adapters, a)
		r.byName[a.Name()] = a
	}
	return r
}

// Get returns the adapter with the given name, or nil.
func (r *Registry) Get(name string) Adapter {
	return r.byName[name]
}

// Has reports whether a provider with the given name is configured.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// FirstVision returns the first configured vision-capable adapter, or nil.
func (r *Registry) FirstVision() Adapter {
	for _, a := range r.adapters {
		if a.SupportsVision() {
			return a
		}
	}
	return nil
}

// Descriptors returns the static description of every configured adapter.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, Descriptor{
			Name:           a.Name(),
			DefaultModel:   a.DefaultModel(),
			SupportsVision: a.SupportsVision(),
		})
	}
	return out
}
