// Package vips encodes thumbnails with libvips through bimg.
package vips

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/h2non/bimg"

	"github.com/hackclub/lazythumbs/internal/imageproc"
)

// Encoder hands a lossless PNG intermediate to libvips for the final
// encode. It satisfies imageproc.Encoder.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Encode(img image.Image, format imaging.Format, opts imageproc.EncodeOptions) ([]byte, error) {
	imageType, err := bimgType(format)
	if err != nil {
		return nil, err
	}

	// PNG preserves quality for the next stage
	var intermediate bytes.Buffer
	if err := imaging.Encode(&intermediate, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode intermediate: %w", err)
	}

	options := bimg.Options{
		Type:           imageType,
		Quality:        opts.Quality,
		Interlace:      opts.Progressive,
		StripMetadata:  true,
		Interpretation: bimg.InterpretationSRGB,
	}
	if opts.Optimize && format == imaging.PNG {
		options.Compression = 9
	}

	out, err := bimg.NewImage(intermediate.Bytes()).Process(options)
	if err != nil {
		return nil, fmt.Errorf("vips encode failed: %w", err)
	}
	return out, nil
}

func bimgType(format imaging.Format) (bimg.ImageType, error) {
	switch format {
	case imaging.JPEG:
		return bimg.JPEG, nil
	case imaging.PNG:
		return bimg.PNG, nil
	case imaging.GIF:
		return bimg.GIF, nil
	case imaging.TIFF:
		return bimg.TIFF, nil
	default:
		return bimg.UNKNOWN, fmt.Errorf("vips: unsupported output format %s", format)
	}
}
