//go:build !gocv

package vision

import (
	"image"

	apperrors "go-plate-inspector/internal/errors"
	"go-plate-inspector/internal/plate"
	"go-plate-inspector/pkg/models"
)

// CascadeDetector is unavailable without OpenCV
type CascadeDetector struct{}

// NewCascadeDetector always fails without the gocv build tag
func NewCascadeDetector(path string, opts plate.Options) (*CascadeDetector, error) {
	return nil, apperrors.NewModelLoadError("cascade detector unavailable", ErrUnavailable)
}

// Detect implements plate.RegionDetector
func (d *CascadeDetector) Detect(gray *image.Gray) ([]models.Region, error) {
	return nil, ErrUnavailable
}

// Close is a no-op
func (d *CascadeDetector) Close() error { return nil }

// Preprocessor is unavailable without OpenCV
type Preprocessor struct{}

// NewPreprocessor always fails without the gocv build tag
func NewPreprocessor(opts plate.Options) (*Preprocessor, error) {
	return nil, ErrUnavailable
}

// Preprocess implements plate.Preprocessor
func (p *Preprocessor) Preprocess(region image.Image) *image.Gray {
	return plate.NewNativePreprocessor(plate.DefaultOptions()).Preprocess(region)
}

// Webcam is unavailable without OpenCV
type Webcam struct{}

// OpenWebcam always fails without the gocv build tag
func OpenWebcam(device int) (*Webcam, error) {
	return nil, ErrUnavailable
}

// Read implements camera.Device
func (w *Webcam) Read() (image.Image, error) {
	return nil, ErrUnavailable
}

// Close is a no-op
func (w *Webcam) Close() error { return nil }
