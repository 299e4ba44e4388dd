//go:build gocv

package vision

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	apperrors "go-plate-inspector/internal/errors"
	"go-plate-inspector/internal/plate"
	"go-plate-inspector/pkg/models"
)

// CascadeDetector finds plate candidates with a pretrained Haar cascade
type CascadeDetector struct {
	mu           sync.Mutex
	classifier   gocv.CascadeClassifier
	scaleFactor  float64
	minNeighbors int
}

// NewCascadeDetector loads the cascade XML at path. A load failure is fatal
// for the process and is reported as a model load error.
func NewCascadeDetector(path string, opts plate.Options) (*CascadeDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, apperrors.NewModelLoadError(fmt.Sprintf("failed to load cascade %q", path), nil)
	}
	return &CascadeDetector{
		classifier:   classifier,
		scaleFactor:  opts.ScaleFactor,
		minNeighbors: opts.MinNeighbors,
	}, nil
}

// Detect implements plate.RegionDetector
func (d *CascadeDetector) Detect(gray *image.Gray) ([]models.Region, error) {
	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	d.mu.Lock()
	rects := d.classifier.DetectMultiScaleWithParams(mat, d.scaleFactor, d.minNeighbors, 0,
		image.Point{}, image.Point{})
	d.mu.Unlock()

	regions := make([]models.Region, 0, len(rects))
	for _, r := range rects {
		regions = append(regions, models.RegionFromRect(r))
	}
	return regions, nil
}

// Close releases the classifier
func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}
