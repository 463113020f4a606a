package extract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kolekta/extract-cli/internal/cost"
	"github.com/kolekta/extract-cli/internal/heuristic"
	"github.com/kolekta/extract-cli/internal/model"
	"github.com/kolekta/extract-cli/internal/provider"
	"github.com/kolekta/extract-cli/internal/schema"
)

// Orchestrator coordinates one extraction request: route, prompt, send,
// parse with a single retry, merge with heuristics, validate, account.
// Safe for concurrent use; all per-request state is local.
type Orchestrator struct {
	registry *provider.Registry
	router   *Router
	prices   *cost.Table
}

// NewOrchestrator creates an Orchestrator over the static provider and
// pricing configuration.
func NewOrchestrator(registry *provider.Registry, router *Router, prices *cost.Table) *Orchestrator {
	return &Orchestrator{registry: registry, router: router, prices: prices}
}

// Options carries one extraction request.
type Options struct {
	FormID     string
	Schema     model.FormSchema
	Text       string
	Preference string

	// NeedsVision forces routing to a vision-capable provider, used when
	// raw images accompany the request.
	NeedsVision bool
	Images      []string
	OCRBlocks   []provider.OCRBlock

	// Collaborator timings, folded into the result metrics.
	ASRMillis    int64
	VisionMillis int64
}

// Extract runs the full pipeline and returns a best-effort result. The
// only error classes are provider failures (transport, or two
// consecutive unparsable responses); heuristic misses never fail.
func (o *Orchestrator) Extract(ctx context.Context, opts Options) (*model.ExtractionResult, error) {
	requestID := uuid.NewString()
	providerName, modelOverride := o.router.Pick(opts.Preference, opts.NeedsVision)
	adapter := o.registry.Get(providerName)
	if adapter == nil {
		return nil, eris.Errorf("extract: provider %q not configured", providerName)
	}

	validator, err := schema.NewValidator(opts.Schema)
	if err != nil {
		return nil, eris.Wrap(err, "extract: build validator")
	}

	prompt := BuildPrompt(opts.Schema, opts.Text)

	// Heuristic passes are pure CPU work; they run alongside the provider
	// round-trip.
	var genericFields, clinicalFields model.Fields
	var modelOut map[string]any
	var acct usage

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		genericFields = heuristic.ExtractGeneric(opts.Text, opts.Schema)
		return nil
	})
	g.Go(func() error {
		clinicalFields = heuristic.ExtractClinical(opts.Text, opts.Schema)
		return nil
	})
	g.Go(func() error {
		var sendErr error
		modelOut, acct, sendErr = o.sendAndParse(gCtx, adapter, opts, prompt, modelOverride)
		return sendErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := Merge(opts.Schema, modelOut, genericFields, clinicalFields)
	missing := validator.MissingRequired(merged)

	metrics := o.buildMetrics(providerName, acct, opts)
	zap.L().Info("extract: request complete",
		zap.String("request_id", requestID),
		zap.String("provider", providerName),
		zap.String("model", metrics.Model),
		zap.Int("fields", len(merged)),
		zap.Int("missing_required", len(missing)),
		zap.Int64("llm_ms", metrics.LLMMillis),
	)

	return &model.ExtractionResult{
		RequestID:       requestID,
		FormID:          opts.FormID,
		Fields:          merged,
		MissingRequired: missing,
		Metrics:         metrics,
	}, nil
}

// ExtractRows runs the multi-row variant for tabular documents. Rows
// have no line-scan analogue, so no heuristic merge applies; each row is
// validated independently.
func (o *Orchestrator) ExtractRows(ctx context.Context, opts Options) (*model.RowsResult, error) {
	requestID := uuid.NewString()
	providerName, modelOverride := o.router.Pick(opts.Preference, opts.NeedsVision)
	adapter := o.registry.Get(providerName)
	if adapter == nil {
		return nil, eris.Errorf("extract: provider %q not configured", providerName)
	}

	validator, err := schema.NewValidator(opts.Schema)
	if err != nil {
		return nil, eris.Wrap(err, "extract: build validator")
	}

	prompt := BuildMultiRowPrompt(opts.Schema, opts.Text)
	obj, acct, err := o.sendAndParse(ctx, adapter, opts, prompt, modelOverride)
	if err != nil {
		return nil, err
	}

	rawRows, _ := obj["rows"].([]any)
	rows := make([]model.Fields, 0, len(rawRows))
	missing := make([][]string, 0, len(rawRows))
	for _, rr := range rawRows {
		rowObj, ok := rr.(map[string]any)
		if !ok {
			continue
		}
		row := Merge(opts.Schema, rowObj, nil, nil)
		rows = append(rows, row)
		missing = append(missing, validator.MissingRequired(row))
	}

	return &model.RowsResult{
		RequestID: requestID,
		Rows:      rows,
		TotalRows: len(rows),
		Missing:   missing,
		Metrics:   o.buildMetrics(providerName, acct, opts),
	}, nil
}

// usage is the per-request accounting accumulated across the initial
// call and the optional retry.
type usage struct {
	tokensIn  int
	tokensOut int
	modelUsed string
	llmMillis int64
}

// sendAndParse performs the Sent and Parsed states, with the single
// permitted strict-prompt retry when parsing fails. Transport failures
// propagate immediately as provider errors; a second parse failure is
// fatal.
func (o *Orchestrator) sendAndParse(ctx context.Context, adapter provider.Adapter, opts Options, prompt, modelOverride string) (map[string]any, usage, error) {
	req := provider.Request{
		Prompt:    prompt,
		Images:    opts.Images,
		OCRBlocks: opts.OCRBlocks,
		Model:     modelOverride,
	}

	start := time.Now()
	resp, err := adapter.Complete(ctx, req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return nil, usage{}, err
	}

	acct := accountUsage(resp, prompt, adapter, modelOverride)
	acct.llmMillis = elapsed

	obj, parseErr := parseObject(resp.Text)
	if parseErr == nil {
		return obj, acct, nil
	}

	zap.L().Warn("extract: unparsable model output, retrying with strict prompt",
		zap.String("provider", adapter.Name()),
		zap.Error(parseErr),
	)

	req.Prompt = prompt + strictSuffix
	start = time.Now()
	retryResp, err := adapter.Complete(ctx, req)
	acct.llmMillis += time.Since(start).Milliseconds()
	if err != nil {
		return nil, acct, err
	}

	retryAcct := accountUsage(retryResp, req.Prompt, adapter, modelOverride)
	acct.tokensIn += retryAcct.tokensIn
	acct.tokensOut += retryAcct.tokensOut
	acct.modelUsed = retryAcct.modelUsed

	obj, parseErr = parseObject(retryResp.Text)
	if parseErr != nil {
		return nil, acct, &provider.Error{
			Provider: adapter.Name(),
			Err:      eris.Wrap(parseErr, "unparsable response after retry"),
		}
	}
	return obj, acct, nil
}

// accountUsage prefers adapter-reported token counts and falls back to a
// length-based estimate.
func accountUsage(resp *provider.Response, prompt string, adapter provider.Adapter, modelOverride string) usage {
	acct := usage{
		tokensIn:  resp.Usage.PromptTokens,
		tokensOut: resp.Usage.CompletionTokens,
		modelUsed: resp.Usage.Model,
	}
	if acct.tokensIn == 0 {
		acct.tokensIn = cost.EstimateTokens(prompt)
	}
	if acct.tokensOut == 0 {
		acct.tokensOut = cost.EstimateTokens(resp.Text)
	}
	if acct.modelUsed == "" {
		acct.modelUsed = modelOverride
	}
	if acct.modelUsed == "" {
		acct.modelUsed = adapter.DefaultModel()
	}
	return acct
}

func (o *Orchestrator) buildMetrics(providerName string, acct usage, opts Options) model.Metrics {
	return model.Metrics{
		ASRMillis:    opts.ASRMillis,
		VisionMillis: opts.VisionMillis,
		LLMMillis:    acct.llmMillis,
		TotalMillis:  opts.ASRMillis + opts.VisionMillis + acct.llmMillis,
		TokensIn:     acct.tokensIn,
		TokensOut:    acct.tokensOut,
		CostUSD:      o.prices.Compute(acct.modelUsed, acct.tokensIn, acct.tokensOut),
		Provider:     providerName,
		Model:        acct.modelUsed,
	}
}
