package extract

import (
	"context"

	"github.com/kolekta/extract-cli/internal/provider"
)

// fakeAdapter is a scripted provider for orchestrator and router tests.
// Each Complete call consumes the next scripted response; the last one
// repeats.
type fakeAdapter struct {
	name      string
	model     string
	vision    bool
	responses []string
	usage     provider.Usage
	err       error

	calls   int
	prompts []string
}

func (f *fakeAdapter) Name() string         { return f.name }
func (f *fakeAdapter) DefaultModel() string { return f.model }
func (f *fakeAdapter) SupportsVision() bool { return f.vision }

func (f *fakeAdapter) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return &provider.Response{Text: f.responses[idx], Usage: f.usage}, nil
}
