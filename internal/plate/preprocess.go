package plate

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// NativePreprocessor binarizes plate regions without OpenCV:
// grayscale, bilateral smoothing, then Otsu thresholding.
type NativePreprocessor struct {
	Diameter   int
	SigmaColor float64
	SigmaSpace float64
}

// NewNativePreprocessor creates a preprocessor from the pipeline options
func NewNativePreprocessor(opts Options) *NativePreprocessor {
	return &NativePreprocessor{
		Diameter:   opts.FilterDiameter,
		SigmaColor: opts.SigmaColor,
		SigmaSpace: opts.SigmaSpace,
	}
}

// Preprocess implements Preprocessor
func (p *NativePreprocessor) Preprocess(region image.Image) *image.Gray {
	gray := Grayscale(region)
	smoothed := BilateralFilter(gray, p.Diameter, p.SigmaColor, p.SigmaSpace)
	return Binarize(smoothed, OtsuThreshold(smoothed))
}

// Grayscale converts img to single-channel luma (0.299R + 0.587G + 0.114B).
// The result always starts at the origin.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

type spatialTap struct {
	dx, dy int
	weight float64
}

// BilateralFilter smooths gray while keeping strong edges. diameter is the
// neighborhood size (radius diameter/2, circular window), sigmaColor weighs
// intensity differences and sigmaSpace weighs distance. Pixels outside the
// image are replaced by the nearest edge pixel.
func BilateralFilter(gray *image.Gray, diameter int, sigmaColor, sigmaSpace float64) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	if sigmaColor <= 0 {
		sigmaColor = 1
	}
	if sigmaSpace <= 0 {
		sigmaSpace = 1
	}
	radius := diameter / 2
	if diameter <= 0 {
		radius = int(math.Round(sigmaSpace * 1.5))
	}

	var colorWeight [256]float64
	colorCoeff := -0.5 / (sigmaColor * sigmaColor)
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)
	taps := make([]spatialTap, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := float64(dx*dx + dy*dy)
			if math.Sqrt(r2) > float64(radius) {
				continue
			}
			taps = append(taps, spatialTap{dx: dx, dy: dy, weight: math.Exp(r2 * spaceCoeff)})
		}
	}

	at := func(x, y int) int {
		x = clampInt(x, 0, w-1)
		y = clampInt(y, 0, h-1)
		return int(gray.Pix[(b.Min.Y+y-gray.Rect.Min.Y)*gray.Stride+(b.Min.X+x-gray.Rect.Min.X)])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := at(x, y)
			var sum, wsum float64
			for _, t := range taps {
				v := at(x+t.dx, y+t.dy)
				d := v - center
				if d < 0 {
					d = -d
				}
				wt := t.weight * colorWeight[d]
				sum += float64(v) * wt
				wsum += wt
			}
			out.Pix[y*out.Stride+x] = uint8(math.Round(sum / wsum))
		}
	}
	return out
}

// OtsuThreshold returns the threshold that maximizes the between-class
// variance of the histogram, with class one holding values <= t. A patch
// with a single intensity has no split; its threshold is that intensity so
// the whole patch binarizes to background.
func OtsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	b := gray.Bounds()
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-gray.Rect.Min.Y)*gray.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[row[x-gray.Rect.Min.X]]++
			total++
		}
	}
	if total == 0 {
		return 0
	}

	var sumAll float64
	minVal := -1
	for v, n := range hist {
		sumAll += float64(v * n)
		if minVal < 0 && n > 0 {
			minVal = v
		}
	}

	var (
		best     = uint8(minVal)
		bestVar  = -1.0
		weightB  int
		sumB     float64
		foundCut bool
	)
	for t := 0; t < 255; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sumAll - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > bestVar {
			bestVar = between
			best = uint8(t)
			foundCut = true
		}
	}
	if !foundCut {
		return uint8(minVal)
	}
	return best
}

// Binarize maps values above t to 255 and everything else to 0
func Binarize(gray *image.Gray, t uint8) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[(b.Min.Y+y-gray.Rect.Min.Y)*gray.Stride+(b.Min.X-gray.Rect.Min.X):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if src[x] > t {
				dst[x] = 255
			}
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
