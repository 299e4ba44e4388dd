// Package ocr adapts Tesseract to the plate pipeline's OCREngine.
//
// The Tesseract engine needs cgo and the system tesseract/leptonica
// libraries. Builds without cgo get a stub whose constructor fails with a
// model load error.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"go-plate-inspector/internal/plate"
)

// DefaultLanguage is the Tesseract language plates are read with
const DefaultLanguage = "eng"

// ErrEngineUnavailable is returned when this binary was built without Tesseract
var ErrEngineUnavailable = errors.New("tesseract OCR engine not available in this build")

// collectLines trims the recognized lines and drops empty ones, keeping order
func collectLines(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

type timeoutEngine struct {
	engine  plate.OCREngine
	timeout time.Duration
}

// WithTimeout bounds how long ReadText may block. A zero or negative timeout
// returns engine unchanged. When the deadline passes the call returns an error
// wrapping context.DeadlineExceeded while the engine keeps running in the
// background until it finishes.
func WithTimeout(engine plate.OCREngine, timeout time.Duration) plate.OCREngine {
	if timeout <= 0 {
		return engine
	}
	return &timeoutEngine{engine: engine, timeout: timeout}
}

type readResult struct {
	lines []string
	err   error
}

func (t *timeoutEngine) ReadText(ctx context.Context, patch image.Image) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan readResult, 1)
	go func() {
		lines, err := t.engine.ReadText(ctx, patch)
		done <- readResult{lines: lines, err: err}
	}()

	select {
	case r := <-done:
		return r.lines, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("ocr did not finish within %s: %w", t.timeout, ctx.Err())
	}
}
