package imageproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Primitives are the pixel operations the transforms are built from.
type Primitives interface {
	// Resize scales img to exactly width x height with an antialiasing filter.
	Resize(img image.Image, width, height int) image.Image
	// Crop cuts rect (relative to img's top-left corner) out of img. Parts of
	// rect outside img are filled with bg.
	Crop(img image.Image, rect image.Rectangle, bg color.Color) image.Image
	// Matte places img at (x, y) on a width x height canvas filled with bg.
	// Pixels that land off the canvas are dropped.
	Matte(img image.Image, width, height, x, y int, bg color.Color) image.Image
	// TrueColor converts palette images to 8-bit NRGBA.
	TrueColor(img image.Image) image.Image
}

// ImagingPrimitives implements Primitives with disintegration/imaging.
type ImagingPrimitives struct{}

func (ImagingPrimitives) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

func (ImagingPrimitives) Crop(img image.Image, rect image.Rectangle, bg color.Color) image.Image {
	b := img.Bounds()
	if rect.Add(b.Min).In(b) {
		return imaging.Crop(img, rect.Add(b.Min))
	}
	canvas := imaging.New(rect.Dx(), rect.Dy(), bg)
	return imaging.Paste(canvas, img, image.Pt(-rect.Min.X, -rect.Min.Y))
}

func (ImagingPrimitives) Matte(img image.Image, width, height, x, y int, bg color.Color) image.Image {
	return imaging.Paste(imaging.New(width, height, bg), img, image.Pt(x, y))
}

func (ImagingPrimitives) TrueColor(img image.Image) image.Image {
	return imaging.Clone(img)
}

// IsPaletted reports whether img uses a color palette.
func IsPaletted(img image.Image) bool {
	_, ok := img.(*image.Paletted)
	return ok
}
