//go:build gocv

package vision

import (
	"image"

	"gocv.io/x/gocv"

	"go-plate-inspector/internal/logger"
	"go-plate-inspector/internal/plate"
)

// Preprocessor binarizes plate regions with OpenCV's bilateral filter and Otsu threshold
type Preprocessor struct {
	diameter   int
	sigmaColor float64
	sigmaSpace float64
	fallback   *plate.NativePreprocessor
}

// NewPreprocessor creates an OpenCV preprocessor
func NewPreprocessor(opts plate.Options) (*Preprocessor, error) {
	return &Preprocessor{
		diameter:   opts.FilterDiameter,
		sigmaColor: opts.SigmaColor,
		sigmaSpace: opts.SigmaSpace,
		fallback:   plate.NewNativePreprocessor(opts),
	}, nil
}

// Preprocess implements plate.Preprocessor. Conversion failures fall back to
// the pure Go implementation so the stage stays total.
func (p *Preprocessor) Preprocess(region image.Image) *image.Gray {
	src, err := gocv.ImageGrayToMatGray(plate.Grayscale(region))
	if err != nil {
		logger.WithError(err).Warn("OpenCV conversion failed, using native preprocessor")
		return p.fallback.Preprocess(region)
	}
	defer src.Close()

	filtered := gocv.NewMat()
	defer filtered.Close()
	gocv.BilateralFilter(src, &filtered, p.diameter, p.sigmaColor, p.sigmaSpace)

	// A flat patch has no foreground; OpenCV's Otsu would turn it all white
	if minVal, maxVal, _, _ := gocv.MinMaxLoc(filtered); minVal == maxVal {
		return image.NewGray(image.Rect(0, 0, filtered.Cols(), filtered.Rows()))
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(filtered, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	img, err := binary.ToImage()
	if err != nil {
		logger.WithError(err).Warn("OpenCV export failed, using native preprocessor")
		return p.fallback.Preprocess(region)
	}
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	return plate.Grayscale(img)
}
