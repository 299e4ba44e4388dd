package plate

import (
	"context"
	"image"

	"go-plate-inspector/pkg/models"
)

// RegionDetector finds candidate plate regions in a grayscale frame.
// The returned order is whatever the detector produces.
type RegionDetector interface {
	Detect(gray *image.Gray) ([]models.Region, error)
}

// Preprocessor turns a cropped plate region into a two-level patch for OCR
type Preprocessor interface {
	Preprocess(region image.Image) *image.Gray
}

// OCREngine reads text from a patch, one fragment per detected text line,
// in detection order
type OCREngine interface {
	ReadText(ctx context.Context, patch image.Image) ([]string, error)
}

// Evaluator decides whether normalized text is an expected plate
type Evaluator interface {
	Evaluate(text string) models.MatchStatus
}
