package provider

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// Anthropic talks to the Anthropic Messages API through the official SDK.
// Vision-capable: data-URL images become base64 image blocks.
type Anthropic struct {
	client  sdk.Client
	model   string
	limiter *rate.Limiter
}

// NewAnthropic creates an Anthropic adapter. If model is empty, the
// default is used.
func NewAnthropic(apiKey, model string, rps float64) *Anthropic {
	if model == "" {
		model = defaultAnthropicModel
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Anthropic{
		client:  sdk.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		limiter: limiter,
	}
}

func (a *Anthropic) Name() string         { return "anthropic" }
func (a *Anthropic) DefaultModel() string { return a.model }
func (a *Anthropic) SupportsVision() bool { return true }

// Complete sends the prompt and returns raw model text with usage.
func (a *Anthropic) Complete(ctx context.Context, req Request) (*Response, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, &Error{Provider: a.Name(), Err: err}
		}
	}

	model := req.Model
	if model == "" {
		model = a.model
	}

	blocks := []sdk.ContentBlockParamUnion{sdk.NewTextBlock(req.Prompt)}
	for _, url := range req.Images {
		if mediaType, data, ok := splitDataURL(url); ok {
			blocks = append(blocks, sdk.NewImageBlockBase64(mediaType, data))
		}
	}
	if len(req.OCRBlocks) > 0 {
		blocks = append(blocks, sdk.NewTextBlock(formatOCRBlocks(req.OCRBlocks)))
	}

	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: 4096,
		System:    []sdk.TextBlockParam{{Text: jsonOnlySystem}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(blocks...)},
	})
	if err != nil {
		return nil, &Error{Provider: a.Name(), Err: err}
	}

	var sb strings.Builder
	for _, b := range msg.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	text := sb.String()
	if text == "" {
		text = "{}"
	}

	return &Response{
		Text: text,
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			Model:            string(msg.Model),
		},
	}, nil
}

// splitDataURL parses "data:<mediatype>;base64,<data>" into its parts.
func splitDataURL(url string) (mediaType, data string, ok bool) {
	if !strings.HasPrefix(url, "data:") {
		return "", "", false
	}
	rest := strings.TrimPrefix(url, "data:")
	meta, data, found := strings.Cut(rest, ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", "", false
	}
	return strings.TrimSuffix(meta, ";base64"), data, true
}
