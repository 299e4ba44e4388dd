//go:build !cgo

package ocr

import (
	"context"
	"image"

	apperrors "go-plate-inspector/internal/errors"
)

// TesseractEngine is unavailable without cgo
type TesseractEngine struct{}

// NewTesseractEngine always fails in builds without cgo
func NewTesseractEngine(language string) (*TesseractEngine, error) {
	return nil, apperrors.NewModelLoadError("OCR engine unavailable", ErrEngineUnavailable)
}

// ReadText implements plate.OCREngine
func (e *TesseractEngine) ReadText(ctx context.Context, patch image.Image) ([]string, error) {
	return nil, ErrEngineUnavailable
}

// Language returns the configured OCR language
func (e *TesseractEngine) Language() string {
	return DefaultLanguage
}

// Close implements io.Closer
func (e *TesseractEngine) Close() error {
	return nil
}
