//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	apperrors "go-plate-inspector/internal/errors"
)

// TesseractEngine reads plate text line by line with gosseract.
// A gosseract client is not safe for concurrent use, so calls are serialized.
type TesseractEngine struct {
	mu       sync.Mutex
	client   *gosseract.Client
	language string
}

// NewTesseractEngine creates the engine and checks that the language data is installed
func NewTesseractEngine(language string) (*TesseractEngine, error) {
	if language == "" {
		language = DefaultLanguage
	}

	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, apperrors.NewModelLoadError("failed to list tesseract languages", err)
	}
	if !containsString(langs, language) {
		return nil, apperrors.NewModelLoadError(
			fmt.Sprintf("tesseract language data %q is not installed", language), nil)
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, apperrors.NewModelLoadError("failed to set OCR language", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, apperrors.NewModelLoadError("failed to set page segmentation mode", err)
	}

	return &TesseractEngine{client: client, language: language}, nil
}

// ReadText returns one fragment per detected text line in detection order
func (e *TesseractEngine) ReadText(ctx context.Context, patch image.Image) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, patch, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to load patch into tesseract: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("tesseract recognition failed: %w", err)
	}

	words := make([]string, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, b.Word)
	}
	return collectLines(words), nil
}

// Language returns the configured OCR language
func (e *TesseractEngine) Language() string {
	return e.language
}

// Close releases the tesseract client
func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
