package transcribe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhisperTranscribe(t *testing.T) {
	var gotModel, gotLanguage, gotFilename string
	var gotAudio []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer oa-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotAudio, err = io.ReadAll(file)
		require.NoError(t, err)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"text":     "patient name is Janet Yakubu",
			"language": "english",
		})
	}))
	defer srv.Close()

	w := NewWhisper("oa-key", srv.URL, "")
	res, err := w.Transcribe(context.Background(), []byte("RIFFxxxx"), "visit.wav", "en")
	require.NoError(t, err)

	assert.Equal(t, "patient name is Janet Yakubu", res.Text)
	assert.Equal(t, "english", res.Language)
	assert.GreaterOrEqual(t, res.Millis, int64(0))

	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "en", gotLanguage)
	assert.Equal(t, "visit.wav", gotFilename)
	assert.Equal(t, []byte("RIFFxxxx"), gotAudio)
}

func TestWhisperTranscribeOmitsEmptyLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, present := r.MultipartForm.Value["language"]
		assert.False(t, present)
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "ok"})
	}))
	defer srv.Close()

	w := NewWhisper("k", srv.URL, "whisper-1")
	_, err := w.Transcribe(context.Background(), []byte{1}, "a.mp3", "")
	require.NoError(t, err)
}

func TestWhisperTranscribeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad audio", http.StatusBadRequest)
	}))
	defer srv.Close()

	w := NewWhisper("k", srv.URL, "")
	_, err := w.Transcribe(context.Background(), []byte{1}, "a.mp3", "en")
	require.Error(t, err)

	var tErr *Error
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "whisper", tErr.Backend)
	assert.Contains(t, err.Error(), "400")
}
