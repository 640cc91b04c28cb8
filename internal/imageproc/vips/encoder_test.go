//go:build vips

package vips

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/h2non/bimg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackclub/lazythumbs/internal/imageproc"
)

func TestEncoder(t *testing.T) {
	img := imaging.New(64, 48, color.NRGBA{R: 90, G: 120, B: 200, A: 255})
	enc := NewEncoder()

	tests := []struct {
		format   imaging.Format
		opts     imageproc.EncodeOptions
		expected string
	}{
		{imaging.JPEG, imageproc.EncodeOptions{Quality: 60, Progressive: true}, "jpeg"},
		{imaging.JPEG, imageproc.EncodeOptions{}, "jpeg"},
		{imaging.PNG, imageproc.EncodeOptions{Optimize: true}, "png"},
	}

	for _, test := range tests {
		data, err := enc.Encode(img, test.format, test.opts)
		require.NoError(t, err)

		size, err := bimg.NewImage(data).Size()
		require.NoError(t, err)
		assert.Equal(t, 64, size.Width)
		assert.Equal(t, 48, size.Height)
		assert.Equal(t, test.expected, bimg.NewImage(data).Type())
	}
}

func TestEncoder_Unsupported(t *testing.T) {
	_, err := NewEncoder().Encode(imaging.New(4, 4, color.Black), imaging.BMP, imageproc.EncodeOptions{})
	assert.Error(t, err)
}
