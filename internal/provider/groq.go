package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	groqEndpoint     = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel = "meta-llama/llama-4-maverick-17b-128e-instruct"
)

// Groq talks to the Groq OpenAI-compatible chat-completions API. Not
// vision-capable: message content is a single string, so image references
// and OCR blocks are appended as plain text.
type Groq struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewGroq creates a Groq adapter. If model is empty, the default is used.
func NewGroq(apiKey, model string, rps float64) *Groq {
	if model == "" {
		model = defaultGroqModel
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Groq{
		apiKey:   apiKey,
		model:    model,
		endpoint: groqEndpoint,
		client:   &http.Client{},
		limiter:  limiter,
	}
}

func (g *Groq) Name() string         { return "groq" }
func (g *Groq) DefaultModel() string { return g.model }
func (g *Groq) SupportsVision() bool { return false }

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete sends the prompt and returns raw model text with usage.
func (g *Groq) Complete(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	parts := []string{req.Prompt}
	for i, url := range req.Images {
		if i >= 10 {
			break
		}
		parts = append(parts, fmt.Sprintf("[IMAGE %d]: %s", i+1, url))
	}
	if len(req.OCRBlocks) > 0 {
		parts = append(parts, formatOCRBlocks(req.OCRBlocks))
	}

	body := groqRequest{
		Model: model,
		Messages: []groqMessage{
			{Role: "system", Content: jsonOnlySystem},
			{Role: "user", Content: strings.Join(parts, "\n\n")},
		},
		Temperature: 0,
	}

	resp, err := g.post(ctx, body)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Err: err}
	}

	text := "{}"
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		text = resp.Choices[0].Message.Content
	}
	usageModel := resp.Model
	if usageModel == "" {
		usageModel = model
	}
	return &Response{
		Text: text,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			Model:            usageModel,
		},
	}, nil
}

func (g *Groq) post(ctx context.Context, body groqRequest) (*chatResponse, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limit wait")
		}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "API call")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, eris.Wrap(err, "unmarshal response")
	}
	return &parsed, nil
}
