package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultWhisperBaseURL = "https://api.openai.com/v1"
	defaultWhisperModel   = "whisper-1"
)

// Whisper transcribes audio through the OpenAI audio API.
type Whisper struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewWhisper creates a Whisper transcriber. Empty baseURL and model fall
// back to the OpenAI defaults.
func NewWhisper(apiKey, baseURL, model string) *Whisper {
	if baseURL == "" {
		baseURL = defaultWhisperBaseURL
	}
	if model == "" {
		model = defaultWhisperModel
	}
	return &Whisper{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

func (w *Whisper) Name() string { return "whisper" }

type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcribe uploads the audio as multipart form data. language is an
// optional ISO-639-1 hint; empty lets the model detect it.
func (w *Whisper) Transcribe(ctx context.Context, audio []byte, filename, language string) (*Result, error) {
	start := time.Now()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, &Error{Backend: w.Name(), Err: eris.Wrap(err, "create form file")}
	}
	if _, err := part.Write(audio); err != nil {
		return nil, &Error{Backend: w.Name(), Err: eris.Wrap(err, "write audio")}
	}
	if err := mw.WriteField("model", w.model); err != nil {
		return nil, &Error{Backend: w.Name(), Err: eris.Wrap(err, "write model field")}
	}
	if language != "" {
		if err := mw.WriteField("language", language); err != nil {
			return nil, &Error{Backend: w.Name(), Err: eris.Wrap(err, "write language field")}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Backend: w.Name(), Err: eris.Wrap(err, "close multipart")}
	}

	url := w.baseURL + "/audio/transcriptions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, &Error{Backend: w.Name(), Err: eris.Wrap(err, "create request")}
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Backend: w.Name(), Err: eris.Wrap(err, "API call")}
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Backend: w.Name(), Err: eris.Wrap(err, "read response")}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Backend: w.Name(), Err: eris.Errorf("API returned %d: %s", resp.StatusCode, string(respBody))}
	}

	var parsed whisperResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &Error{Backend: w.Name(), Err: eris.Wrap(err, "unmarshal response")}
	}

	return &Result{
		Text:     parsed.Text,
		Language: parsed.Language,
		Millis:   time.Since(start).Milliseconds(),
	}, nil
}
