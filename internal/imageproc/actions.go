package imageproc

import (
	"context"
	"fmt"
	"image"
)

// Thumbnail scales along the one given dimension and keeps the aspect
// ratio. It never upscales.
func (e *Engine) Thumbnail(ctx context.Context, src Source, width, height int) (image.Image, error) {
	img, err := e.resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	if (width > 0) == (height > 0) {
		return nil, fmt.Errorf("%w: thumbnail requires width XOR height; got (%d, %d)", ErrInvalidArgument, width, height)
	}
	return e.thumbnail(img, width, height), nil
}

// Scale resizes to exactly width x height, clamped to the source size.
func (e *Engine) Scale(ctx context.Context, src Source, width, height int) (image.Image, error) {
	img, err := e.resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := requireBoth("scale", width, height); err != nil {
		return nil, err
	}
	return e.scale(img, width, height), nil
}

// Resize thumbnails along the source's shorter side and center-crops to
// width x height. Images already within bounds are returned as is.
func (e *Engine) Resize(ctx context.Context, src Source, width, height int) (image.Image, error) {
	img, err := e.resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := requireBoth("resize", width, height); err != nil {
		return nil, err
	}
	return e.resize(img, width, height, false), nil
}

// MResize is Resize without the within-bounds shortcut: small images are
// padded out to width x height with the matte color.
func (e *Engine) MResize(ctx context.Context, src Source, width, height int) (image.Image, error) {
	img, err := e.resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := requireBoth("mresize", width, height); err != nil {
		return nil, err
	}
	return e.resize(img, width, height, true), nil
}

// AResize picks crop or matte from the source and target orientations.
// Same orientation scales to cover the target and crops; opposite
// orientation scales to the source's long side and mattes.
func (e *Engine) AResize(ctx context.Context, src Source, width, height int) (image.Image, error) {
	img, err := e.resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := requireBoth("aresize", width, height); err != nil {
		return nil, err
	}
	return e.aresize(img, width, height, true), nil
}

// AResizeNoCrop fits the whole source inside width x height and mattes.
func (e *Engine) AResizeNoCrop(ctx context.Context, src Source, width, height int) (image.Image, error) {
	img, err := e.resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := requireBoth("aresize_no_crop", width, height); err != nil {
		return nil, err
	}
	return e.aresize(img, width, height, false), nil
}

// Matte shrinks the source to fit width x height and centers it on a
// matte-colored canvas of that size.
func (e *Engine) Matte(ctx context.Context, src Source, width, height int) (image.Image, error) {
	img, err := e.resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := requireBoth("matte", width, height); err != nil {
		return nil, err
	}

	sw, sh := size(img)
	fw, fh := sw, sh
	if fw > width {
		fh = max(fh*width/fw, 1)
		fw = width
	}
	if fh > height {
		fw = max(fw*height/fh, 1)
		fh = height
	}
	if fw != sw || fh != sh {
		img = e.prims.Resize(img, fw, fh)
	}
	return e.prims.Matte(img, width, height, floorDiv(width-fw, 2), floorDiv(height-fh, 2), e.matte), nil
}

func (e *Engine) thumbnail(img image.Image, width, height int) image.Image {
	sw, sh := size(img)
	if width == 0 {
		width = max(sw*height/sh, 1)
	}
	if height == 0 {
		height = max(sh*width/sw, 1)
	}
	if width >= sw || height >= sh {
		return img
	}
	return e.scale(img, width, height)
}

func (e *Engine) scale(img image.Image, width, height int) image.Image {
	sw, sh := size(img)
	width = min(width, sw)
	height = min(height, sh)
	if IsPaletted(img) {
		img = e.prims.TrueColor(img)
	}
	return e.prims.Resize(img, width, height)
}

func (e *Engine) resize(img image.Image, width, height int, allowUndersized bool) image.Image {
	sw, sh := size(img)
	if !allowUndersized && width >= sw && height >= sh {
		return img
	}

	if sw < sh {
		img = e.thumbnail(img, width, 0)
	} else {
		img = e.thumbnail(img, 0, height)
	}

	iw, ih := size(img)
	if iw == width && ih == height {
		return img
	}
	left := floorDiv(iw-width, 2)
	top := floorDiv(ih-height, 2)
	return e.prims.Crop(img, image.Rect(left, top, left+width, top+height), e.matte)
}

func (e *Engine) aresize(img image.Image, width, height int, crop bool) image.Image {
	sw, sh := size(img)
	if sw == width && sh == height {
		return img
	}

	// sw/sh > width/height without floats
	sourceWider := sw*height > width*sh
	sourceLandscape := sw >= sh
	targetLandscape := width >= height

	var tw, th int
	switch {
	case sourceLandscape != targetLandscape && sourceLandscape:
		tw = width
	case sourceLandscape != targetLandscape:
		th = height
	// same orientation: cover the target when cropping, fit inside it otherwise
	case sourceWider == crop:
		th = height
	default:
		tw = width
	}

	if (tw > 0 && tw < sw) || (th > 0 && th < sh) {
		img = e.thumbnail(img, tw, th)
	}

	iw, ih := size(img)
	if iw == width && ih == height {
		return img
	}
	return e.prims.Matte(img, width, height, floorDiv(width-iw, 2), floorDiv(height-ih, 2), e.matte)
}

func requireBoth(action string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %s requires width and height; got (%d, %d)", ErrInvalidArgument, action, width, height)
	}
	return nil
}

func size(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// floorDiv rounds toward negative infinity, so centering offsets for
// oversized images stay symmetric.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
