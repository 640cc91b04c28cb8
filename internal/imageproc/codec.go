package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/jpegli"
	_ "golang.org/x/image/webp"

	"github.com/hackclub/lazythumbs/internal/util"
)

// ErrDecode wraps source bytes that can't be decoded as an image.
var ErrDecode = errors.New("failed to decode image")

// Decode reads JPEG, PNG, GIF, BMP, TIFF or WebP data and applies the EXIF
// orientation, if any.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// FormatFromPath infers the output format from a file extension. Paths
// without a known extension encode as JPEG.
func FormatFromPath(path string) imaging.Format {
	return util.FormatFromPath(path)
}

// EncodeOptions are the tuning knobs for an encode. The zero value means
// the format's defaults.
type EncodeOptions struct {
	Quality     int
	Optimize    bool
	Progressive bool
}

func (o EncodeOptions) IsZero() bool {
	return o == EncodeOptions{}
}

// Encoder turns an image into bytes of the given format.
type Encoder interface {
	Encode(img image.Image, format imaging.Format, opts EncodeOptions) ([]byte, error)
}

// StdEncoder encodes with the pure Go codecs; JPEG tuning goes through
// jpegli.
type StdEncoder struct{}

func (StdEncoder) Encode(img image.Image, format imaging.Format, opts EncodeOptions) ([]byte, error) {
	if opts.Quality < 0 || opts.Quality > 100 {
		return nil, fmt.Errorf("%w: quality %d out of range", ErrInvalidArgument, opts.Quality)
	}

	var buf bytes.Buffer
	switch {
	case opts.IsZero():
		if err := imaging.Encode(&buf, img, format); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", format, err)
		}
	case format == imaging.JPEG && (opts.Optimize || opts.Progressive):
		if err := encodeJpegli(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("jpegli encode failed: %w", err)
		}
	case format == imaging.JPEG:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality(opts))); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case format == imaging.PNG && opts.Optimize:
		if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	default:
		if err := imaging.Encode(&buf, img, format); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", format, err)
		}
	}
	return buf.Bytes(), nil
}

func encodeJpegli(buf *bytes.Buffer, img image.Image, opts EncodeOptions) error {
	options := &jpegli.EncodingOptions{
		Quality:              jpegQuality(opts),
		OptimizeCoding:       opts.Optimize,
		AdaptiveQuantization: true,
		FancyDownsampling:    true,
		ChromaSubsampling:    image.YCbCrSubsampleRatio420,
	}
	if opts.Progressive {
		options.ProgressiveLevel = 2
	}
	return jpegli.Encode(buf, img, options)
}

func jpegQuality(opts EncodeOptions) int {
	if opts.Quality == 0 {
		return 75
	}
	return opts.Quality
}
