// Package vision turns document photos into text ahead of extraction.
// Images are OCR'd through a vision-capable provider; multiple pages are
// processed concurrently and stitched in input order.
package vision

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kolekta/extract-cli/internal/provider"
)

// Page is the OCR output for one image.
type Page struct {
	Filename string
	Text     string
	Blocks   []provider.OCRBlock
}

// Result is the combined OCR output for a document.
type Result struct {
	Text   string
	Pages  []Page
	Blocks []provider.OCRBlock
	Millis int64
}

// Recognizer runs OCR over one or more images using a vision-capable
// provider adapter.
type Recognizer struct {
	proc       provider.ImageProcessor
	maxWorkers int
}

// NewRecognizer wraps an image-capable adapter. maxWorkers bounds
// concurrent per-image calls; values below 1 mean serial.
func NewRecognizer(proc provider.ImageProcessor, maxWorkers int) *Recognizer {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Recognizer{proc: proc, maxWorkers: maxWorkers}
}

// Recognize OCRs every image and concatenates page texts in input order.
// A single failed page fails the whole document.
func (r *Recognizer) Recognize(ctx context.Context, images [][]byte, filenames []string) (*Result, error) {
	if len(images) != len(filenames) {
		return nil, eris.Errorf("vision: %d images but %d filenames", len(images), len(filenames))
	}
	start := time.Now()

	pages := make([]Page, len(images))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxWorkers)
	for i := range images {
		i := i
		g.Go(func() error {
			text, blocks, err := r.proc.ProcessImage(gCtx, images[i], filenames[i])
			if err != nil {
				return eris.Wrapf(err, "vision: page %d (%s)", i+1, filenames[i])
			}
			pages[i] = Page{Filename: filenames[i], Text: text, Blocks: blocks}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	var blocks []provider.OCRBlock
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.Text)
		blocks = append(blocks, p.Blocks...)
	}

	res := &Result{
		Text:   sb.String(),
		Pages:  pages,
		Blocks: blocks,
		Millis: time.Since(start).Milliseconds(),
	}
	zap.L().Debug("vision: recognized document",
		zap.Int("pages", len(pages)),
		zap.Int("blocks", len(blocks)),
		zap.Int64("elapsed_ms", res.Millis),
	)
	return res, nil
}

// LoadDataURLs reads image files and encodes each as a data URL for
// providers that accept inline images.
func LoadDataURLs(paths []string) ([]string, error) {
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, eris.Wrapf(err, "vision: read image %s", p)
		}
		urls = append(urls, "data:"+mimeForFile(p)+";base64,"+base64.StdEncoding.EncodeToString(data))
	}
	return urls, nil
}

func mimeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
