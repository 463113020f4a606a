package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel = "gpt-4o"

	jsonOnlySystem = "Respond ONLY with valid JSON. No markdown."
)

// OpenAI talks to the OpenAI chat-completions API. Vision-capable:
// images travel as data-URL content parts in the user message.
type OpenAI struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewOpenAI creates an OpenAI adapter. If model is empty, the default is
// used. rps caps outbound requests per second; zero disables limiting.
func NewOpenAI(apiKey, model string, rps float64) *OpenAI {
	if model == "" {
		model = defaultOpenAIModel
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &OpenAI{
		apiKey:   apiKey,
		model:    model,
		endpoint: openAIEndpoint,
		client:   &http.Client{},
		limiter:  limiter,
	}
}

func (o *OpenAI) Name() string         { return "openai" }
func (o *OpenAI) DefaultModel() string { return o.model }
func (o *OpenAI) SupportsVision() bool { return true }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends the prompt (plus any images and OCR context) and returns
// the raw model text with reported usage.
func (o *OpenAI) Complete(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	parts := []chatContentPart{{Type: "text", Text: req.Prompt}}
	for _, url := range req.Images {
		parts = append(parts, chatContentPart{Type: "image_url", ImageURL: &chatImageURL{URL: url}})
	}
	if len(req.OCRBlocks) > 0 {
		parts = append(parts, chatContentPart{Type: "text", Text: formatOCRBlocks(req.OCRBlocks)})
	}

	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: jsonOnlySystem},
			{Role: "user", Content: parts},
		},
		Temperature: 0,
	}

	resp, err := o.post(ctx, body)
	if err != nil {
		return nil, &Error{Provider: o.Name(), Err: err}
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

// ProcessImage sends the image to the vision model and asks for full text
// plus positioned blocks as JSON. A response that fails to parse as JSON
// is returned as a bare text blob with no blocks.
func (o *OpenAI) ProcessImage(ctx context.Context, imageBytes []byte, filename string) (string, []OCRBlock, error) {
	dataURL := "data:" + sniffImageMime(filename) + ";base64," +
		base64.StdEncoding.EncodeToString(imageBytes)

	prompt := "You are an OCR assistant. Extract all text from the provided image. " +
		`Respond with JSON: {"text": <full_text>, "blocks": [{"text": ..., "bbox": [x,y,w,h], "confidence": 0.9}, ...]}` +
		"\nImage filename: " + filename

	resp, err := o.Complete(ctx, Request{Prompt: prompt, Images: []string{dataURL}})
	if err != nil {
		return "", nil, err
	}

	var parsed struct {
		Text   string     `json:"text"`
		Blocks []OCRBlock `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return resp.Text, nil, nil
	}
	return parsed.Text, parsed.Blocks, nil
}

func (o *OpenAI) post(ctx context.Context, body chatRequest) (*chatResponse, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limit wait")
		}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
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

// formatOCRBlocks renders a compact representation of the first few OCR
// blocks for prompt injection.
func formatOCRBlocks(blocks []OCRBlock) string {
	if len(blocks) > 10 {
		blocks = blocks[:10]
	}
	b, err := json.Marshal(blocks)
	if err != nil {
		return "OCR blocks present."
	}
	return fmt.Sprintf("OCR blocks: %s", b)
}

func sniffImageMime(filename string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".png"):
		return "image/png"
	case strings.HasSuffix(strings.ToLower(filename), ".webp"):
		return "image/webp"
	case strings.HasSuffix(strings.ToLower(filename), ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
