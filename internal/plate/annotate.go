package plate

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"go-plate-inspector/pkg/models"
)

var (
	boxColor   = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
	labelColor = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
)

const (
	boxThickness = 2
	labelOffset  = 10
)

// DrawRegion marks region on dst with a green box and the label 10px above it
func DrawRegion(dst draw.Image, region models.Region, label string) {
	r := region.Rect()
	bounds := dst.Bounds()
	for t := 0; t < boxThickness; t++ {
		outer := image.Rect(r.Min.X-t, r.Min.Y-t, r.Max.X+t, r.Max.Y+t)
		drawOutline(dst, bounds, outer)
	}
	if label == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(r.Min.X, r.Min.Y-labelOffset),
	}
	d.DrawString(label)
}

func drawOutline(dst draw.Image, clip, r image.Rectangle) {
	if r.Empty() {
		return
	}
	set := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(clip) {
			dst.Set(x, y, boxColor)
		}
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		set(x, r.Min.Y)
		set(x, r.Max.Y-1)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		set(r.Min.X, y)
		set(r.Max.X-1, y)
	}
}
