// Package transcribe converts recorded audio into text ahead of field
// extraction. Two backends are supported: OpenAI Whisper for broad
// language coverage and Spitch for Nigerian languages, which can also
// translate the transcript into English before extraction.
package transcribe

import (
	"context"
	"fmt"
)

// Result is a finished transcription.
type Result struct {
	Text     string
	Language string
	Millis   int64
}

// Transcriber turns raw audio bytes into text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, filename, language string) (*Result, error)
}

// Error wraps a failure from a transcription backend.
type Error struct {
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcribe %s: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
