package plate

import "go-plate-inspector/internal/strategy"

// Options holds the tunables of the recognition pipeline
type Options struct {
	// Cascade detection
	ScaleFactor  float64
	MinNeighbors int

	// Region selection
	MinArea           int
	SelectionStrategy string

	// Bilateral filter
	FilterDiameter int
	SigmaColor     float64
	SigmaSpace     float64

	// Annotation
	Label string

	OCRLanguage string

	// Diagnostics that do not change the match decision
	ComputeQuality bool
	SuggestNearest bool
}

// DefaultOptions returns the parameters the plate cascade was tuned with
func DefaultOptions() Options {
	return Options{
		ScaleFactor:       1.1,
		MinNeighbors:      4,
		MinArea:           strategy.DefaultMinArea,
		SelectionStrategy: strategy.FirstFitName,
		FilterDiameter:    11,
		SigmaColor:        17,
		SigmaSpace:        17,
		Label:             "Number Plate",
		OCRLanguage:       "eng",
		ComputeQuality:    true,
		SuggestNearest:    true,
	}
}

// WithDetection overrides the cascade scale factor and neighbor count
func (opts Options) WithDetection(scaleFactor float64, minNeighbors int) Options {
	opts.ScaleFactor = scaleFactor
	opts.MinNeighbors = minNeighbors
	return opts
}

// WithSelection overrides the selection policy and its area threshold
func (opts Options) WithSelection(name string, minArea int) Options {
	opts.SelectionStrategy = name
	opts.MinArea = minArea
	return opts
}

// WithFilter overrides the bilateral filter parameters
func (opts Options) WithFilter(diameter int, sigmaColor, sigmaSpace float64) Options {
	opts.FilterDiameter = diameter
	opts.SigmaColor = sigmaColor
	opts.SigmaSpace = sigmaSpace
	return opts
}

// WithoutDiagnostics disables quality metrics and nearest-entry suggestions
func (opts Options) WithoutDiagnostics() Options {
	opts.ComputeQuality = false
	opts.SuggestNearest = false
	return opts
}
