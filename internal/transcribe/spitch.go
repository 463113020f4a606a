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

const defaultSpitchBaseURL = "https://api.spi-tch.com/v1"

// spitchLanguages is the set of language codes the Spitch API accepts.
// Anything else is routed to Whisper by the caller.
var spitchLanguages = map[string]bool{
	"yo": true, // Yoruba
	"ha": true, // Hausa
	"ig": true, // Igbo
	"am": true, // Amharic
	"en": true,
}

// SupportsLanguage reports whether Spitch can transcribe the given
// ISO-639-1 code.
func SupportsLanguage(code string) bool { return spitchLanguages[code] }

// Spitch transcribes Nigerian-language audio and can translate the
// transcript into English for downstream extraction.
type Spitch struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSpitch creates a Spitch transcriber.
func NewSpitch(apiKey, baseURL string) *Spitch {
	if baseURL == "" {
		baseURL = defaultSpitchBaseURL
	}
	return &Spitch{apiKey: apiKey, baseURL: baseURL, client: &http.Client{}}
}

func (s *Spitch) Name() string { return "spitch" }

type spitchTranscription struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio with an explicit language code. Spitch
// requires the language; callers should check SupportsLanguage first.
func (s *Spitch) Transcribe(ctx context.Context, audio []byte, filename, language string) (*Result, error) {
	if !SupportsLanguage(language) {
		return nil, &Error{Backend: s.Name(), Err: eris.Errorf("unsupported language %q", language)}
	}
	start := time.Now()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("content", filename)
	if err != nil {
		return nil, &Error{Backend: s.Name(), Err: eris.Wrap(err, "create form file")}
	}
	if _, err := part.Write(audio); err != nil {
		return nil, &Error{Backend: s.Name(), Err: eris.Wrap(err, "write audio")}
	}
	if err := mw.WriteField("language", language); err != nil {
		return nil, &Error{Backend: s.Name(), Err: eris.Wrap(err, "write language field")}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Backend: s.Name(), Err: eris.Wrap(err, "close multipart")}
	}

	respBody, err := s.post(ctx, "/transcriptions", mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, &Error{Backend: s.Name(), Err: err}
	}

	var parsed spitchTranscription
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &Error{Backend: s.Name(), Err: eris.Wrap(err, "unmarshal response")}
	}

	return &Result{
		Text:     parsed.Text,
		Language: language,
		Millis:   time.Since(start).Milliseconds(),
	}, nil
}

type spitchTranslateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type spitchTranslateResponse struct {
	Text string `json:"text"`
}

// Translate converts a transcript from the source language to English so
// the extraction prompt and heuristics operate on English text.
func (s *Spitch) Translate(ctx context.Context, text, source string) (string, error) {
	body, err := json.Marshal(spitchTranslateRequest{Text: text, Source: source, Target: "en"})
	if err != nil {
		return "", &Error{Backend: s.Name(), Err: eris.Wrap(err, "marshal request")}
	}

	respBody, err := s.post(ctx, "/translate", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Backend: s.Name(), Err: err}
	}

	var parsed spitchTranslateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &Error{Backend: s.Name(), Err: eris.Wrap(err, "unmarshal response")}
	}
	return parsed.Text, nil
}

func (s *Spitch) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, body)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
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
	return respBody, nil
}
