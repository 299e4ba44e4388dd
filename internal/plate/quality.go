package plate

import (
	"image"
	"sync"

	"gonum.org/v1/gonum/stat"

	"go-plate-inspector/pkg/models"
)

var laplacianPool = sync.Pool{
	New: func() interface{} {
		return make([]float64, 0, 4096)
	},
}

// MeasureQuality computes diagnostics on the grayscale region before
// binarization. A low Laplacian variance usually means a blurry plate.
func MeasureQuality(gray *image.Gray, threshold uint8) models.PatchQuality {
	return models.PatchQuality{
		LaplacianVar: LaplacianVariance(gray),
		Brightness:   Brightness(gray),
		Threshold:    threshold,
	}
}

// LaplacianVariance returns the variance of the 4-neighbor Laplacian
func LaplacianVariance(gray *image.Gray) float64 {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	data := laplacianPool.Get().([]float64)
	defer func() { laplacianPool.Put(data[:0]) }()

	// Laplacian kernel: [0, 1, 0; 1, -4, 1; 0, 1, 0]
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			top := float64(gray.GrayAt(x, y-1).Y)
			bottom := float64(gray.GrayAt(x, y+1).Y)
			left := float64(gray.GrayAt(x-1, y).Y)
			right := float64(gray.GrayAt(x+1, y).Y)
			data = append(data, -4*center+top+bottom+left+right)
		}
	}

	return stat.Variance(data, nil)
}

// Brightness returns the mean intensity in [0, 255]
func Brightness(gray *image.Gray) float64 {
	b := gray.Bounds()
	if b.Empty() {
		return 0
	}
	values := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			values = append(values, float64(gray.GrayAt(x, y).Y))
		}
	}
	return stat.Mean(values, nil)
}
