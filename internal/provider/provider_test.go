package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name   string
	model  string
	vision bool
}

func (s *stubAdapter) Name() string         { return s.name }
func (s *stubAdapter) DefaultModel() string { return s.model }
func (s *stubAdapter) SupportsVision() bool { return s.vision }
func (s *stubAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	return &Response{Text: "{}"}, nil
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(
		&stubAdapter{name: "openai", model: "gpt-4o", vision: true},
		&stubAdapter{name: "groq", model: "llama"},
	)

	assert.True(t, r.Has("openai"))
	assert.False(t, r.Has("anthropic"))
	require.NotNil(t, r.Get("groq"))
	assert.Nil(t, r.Get("anthropic"))
}

func TestRegistryFirstVisionFollowsRegistrationOrder(t *testing.T) {
	r := NewRegistry(
		&stubAdapter{name: "groq"},
		&stubAdapter{name: "openai", vision: true},
		&stubAdapter{name: "anthropic", vision: true},
	)

	vis := r.FirstVision()
	require.NotNil(t, vis)
	assert.Equal(t, "openai", vis.Name())
}

func TestRegistryFirstVisionNone(t *testing.T) {
	r := NewRegistry(&stubAdapter{name: "groq"})
	assert.Nil(t, r.FirstVision())
}

func TestRegistryDescriptors(t *testing.T) {
	r := NewRegistry(
		&stubAdapter{name: "openai", model: "gpt-4o", vision: true},
		&stubAdapter{name: "groq", model: "llama"},
	)

	descs := r.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, "openai", descs[0].Name)
	assert.True(t, descs[0].SupportsVision)
	assert.Equal(t, "llama", descs[1].DefaultModel)
}

func TestErrorUnwrap(t *testing.T) {
	inner := assert.AnError
	err := &Error{Provider: "openai", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "openai")
}

func TestSplitDataURL(t *testing.T) {
	mt, data, ok := splitDataURL("data:image/png;base64,AAAA")
	require.True(t, ok)
	assert.Equal(t, "image/png", mt)
	assert.Equal(t, "AAAA", data)

	_, _, ok = splitDataURL("https://example.com/a.png")
	assert.False(t, ok)

	_, _, ok = splitDataURL("data:image/png,rawdata")
	assert.False(t, ok)
}
