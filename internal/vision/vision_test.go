package vision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolekta/extract-cli/internal/provider"
)

type fakeProcessor struct {
	calls  atomic.Int32
	failOn string
}

func (f *fakeProcessor) ProcessImage(ctx context.Context, imageBytes []byte, filename string) (string, []provider.OCRBlock, error) {
	f.calls.Add(1)
	if filename == f.failOn {
		return "", nil, errors.New("unreadable image")
	}
	return "text of " + filename, []provider.OCRBlock{{Text: filename, Confidence: 0.9}}, nil
}

func TestRecognizeStitchesPagesInOrder(t *testing.T) {
	proc := &fakeProcessor{}
	rec := NewRecognizer(proc, 4)

	res, err := rec.Recognize(context.Background(),
		[][]byte{{1}, {2}, {3}},
		[]string{"p1.jpg", "p2.jpg", "p3.jpg"})
	require.NoError(t, err)

	assert.Equal(t, int32(3), proc.calls.Load())
	assert.Equal(t, "text of p1.jpg\n\ntext of p2.jpg\n\ntext of p3.jpg", res.Text)
	require.Len(t, res.Pages, 3)
	assert.Equal(t, "p2.jpg", res.Pages[1].Filename)
	assert.Len(t, res.Blocks, 3)
	assert.GreaterOrEqual(t, res.Millis, int64(0))
}

func TestRecognizeFailedPageFailsDocument(t *testing.T) {
	proc := &fakeProcessor{failOn: "p2.jpg"}
	rec := NewRecognizer(proc, 1)

	_, err := rec.Recognize(context.Background(),
		[][]byte{{1}, {2}},
		[]string{"p1.jpg", "p2.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p2.jpg")
}

func TestRecognizeLengthMismatch(t *testing.T) {
	rec := NewRecognizer(&fakeProcessor{}, 1)
	_, err := rec.Recognize(context.Background(), [][]byte{{1}}, []string{"a.jpg", "b.jpg"})
	assert.Error(t, err)
}

func TestLoadDataURLs(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(png, []byte{0x89, 0x50}, 0644))
	jpg := filepath.Join(dir, "photo.jpeg")
	require.NoError(t, os.WriteFile(jpg, []byte{0xFF, 0xD8}, 0644))

	urls, err := LoadDataURLs([]string{png, jpg})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.True(t, strings.HasPrefix(urls[0], "data:image/png;base64,"))
	assert.True(t, strings.HasPrefix(urls[1], "data:image/jpeg;base64,"))
}

func TestLoadDataURLsMissingFile(t *testing.T) {
	_, err := LoadDataURLs([]string{fmt.Sprintf("%s/nope.png", t.TempDir())})
	assert.Error(t, err)
}
