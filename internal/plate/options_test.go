package plate

import (
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.ScaleFactor != 1.1 {
		t.Errorf("Expected ScaleFactor to be 1.1, got %f", opts.ScaleFactor)
	}
	if opts.MinNeighbors != 4 {
		t.Errorf("Expected MinNeighbors to be 4, got %d", opts.MinNeighbors)
	}
	if opts.MinArea != 500 {
		t.Errorf("Expected MinArea to be 500, got %d", opts.MinArea)
	}
	if opts.SelectionStrategy != "first_fit" {
		t.Errorf("Expected first_fit selection, got %s", opts.SelectionStrategy)
	}
	if opts.FilterDiameter != 11 || opts.SigmaColor != 17 || opts.SigmaSpace != 17 {
		t.Errorf("Unexpected filter parameters: %d %f %f", opts.FilterDiameter, opts.SigmaColor, opts.SigmaSpace)
	}
	if opts.Label != "Number Plate" {
		t.Errorf("Expected label 'Number Plate', got %s", opts.Label)
	}
	if opts.OCRLanguage != "eng" {
		t.Errorf("Expected OCRLanguage to be 'eng', got %s", opts.OCRLanguage)
	}
}

func TestOptionsBuilders(t *testing.T) {
	base := DefaultOptions()
	opts := base.
		WithDetection(1.3, 6).
		WithSelection("largest_area", 800).
		WithFilter(9, 75, 75).
		WithoutDiagnostics()

	if opts.ScaleFactor != 1.3 || opts.MinNeighbors != 6 {
		t.Errorf("WithDetection not applied: %f %d", opts.ScaleFactor, opts.MinNeighbors)
	}
	if opts.SelectionStrategy != "largest_area" || opts.MinArea != 800 {
		t.Errorf("WithSelection not applied: %s %d", opts.SelectionStrategy, opts.MinArea)
	}
	if opts.FilterDiameter != 9 || opts.SigmaColor != 75 {
		t.Errorf("WithFilter not applied: %d %f", opts.FilterDiameter, opts.SigmaColor)
	}
	if opts.ComputeQuality || opts.SuggestNearest {
		t.Error("Expected diagnostics to be disabled")
	}

	// Builders work on copies
	if base.ScaleFactor != 1.1 || !base.ComputeQuality {
		t.Error("Expected base options to be unchanged")
	}
}
