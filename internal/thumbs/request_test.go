package thumbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackclub/lazythumbs/internal/geometry"
)

func TestParseQuality(t *testing.T) {
	tests := []struct {
		token    string
		expected int
		wantErr  bool
	}{
		{"", 60, false},
		{"q80", 80, false},
		{"80", 80, false},
		{"q100", 100, false},
		{"q1", 1, false},
		{"q0", 0, true},
		{"q101", 0, true},
		{"qq", 0, true},
		{"q-5", 0, true},
	}

	for _, test := range tests {
		got, err := ParseQuality(test.token, 60)
		if test.wantErr {
			assert.ErrorIs(t, err, ErrInvalidRequest, test.token)
			continue
		}
		require.NoError(t, err, test.token)
		assert.Equal(t, test.expected, got, test.token)
	}
}

func TestValidateSourcePath(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"i/p.jpg", true},
		{"p.jpg", true},
		{"a..b/p.jpg", true},
		{"", false},
		{"/etc/passwd", false},
		{"../p.jpg", false},
		{"i/../../p.jpg", false},
		{"i/..", false},
	}

	for _, test := range tests {
		err := ValidateSourcePath(test.path)
		if test.ok {
			assert.NoError(t, err, test.path)
		} else {
			assert.ErrorIs(t, err, ErrInvalidRequest, test.path)
		}
	}
}

func TestRenderedPath(t *testing.T) {
	assert.Equal(t, "lt_cache/thumbnail/48/i/p.jpg",
		RenderedPath("lt_cache", "thumbnail", geometry.Geometry{Width: 48}, "", "i/p.jpg"))
	assert.Equal(t, "lt_cache/thumbnail/x48/q80/i/p.jpg",
		RenderedPath("lt_cache", "thumbnail", geometry.Geometry{Height: 48}, "q80", "i/p.jpg"))
	assert.Equal(t, "resize/150x200/q80/i/p.jpg",
		RenderedPath("", "resize", geometry.Geometry{Width: 150, Height: 200}, "80", "i/p.jpg"))
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		url      string
		expected Request
	}{
		{
			"/lt_cache/thumbnail/48/i/p.jpg",
			Request{Action: "thumbnail", GeometryToken: "48", SourcePath: "i/p.jpg", Path: "lt_cache/thumbnail/48/i/p.jpg"},
		},
		{
			"/lt_cache/thumbnail/48/q80/i/p.jpg",
			Request{Action: "thumbnail", GeometryToken: "48", QualityToken: "q80", SourcePath: "i/p.jpg", Path: "lt_cache/thumbnail/48/q80/i/p.jpg"},
		},
		{
			"/lt_cache/resize/150/200/i/p.jpg",
			Request{Action: "resize", GeometryToken: "150/200", SourcePath: "i/p.jpg", Path: "lt_cache/resize/150/200/i/p.jpg"},
		},
		{
			"/lt_cache/resize/150x200/q90/i/p.jpg",
			Request{Action: "resize", GeometryToken: "150x200", QualityToken: "q90", SourcePath: "i/p.jpg", Path: "lt_cache/resize/150x200/q90/i/p.jpg"},
		},
		{
			"/lt_cache/thumbnail/x/48/i/p.jpg",
			Request{Action: "thumbnail", GeometryToken: "x/48", SourcePath: "i/p.jpg", Path: "lt_cache/thumbnail/x/48/i/p.jpg"},
		},
		{
			"/lt_cache/thumbnail/x48/i/p.jpg",
			Request{Action: "thumbnail", GeometryToken: "x48", SourcePath: "i/p.jpg", Path: "lt_cache/thumbnail/x48/i/p.jpg"},
		},
		{
			// a numeric directory after a single-dimension geometry
			"/lt_cache/thumbnail/48/2020/p.jpg",
			Request{Action: "thumbnail", GeometryToken: "48", SourcePath: "2020/p.jpg", Path: "lt_cache/thumbnail/48/2020/p.jpg"},
		},
		{
			// the quality segment needs a source after it
			"/lt_cache/thumbnail/48/q80",
			Request{Action: "thumbnail", GeometryToken: "48", SourcePath: "q80", Path: "lt_cache/thumbnail/48/q80"},
		},
	}

	for _, test := range tests {
		got, err := ParsePath("lt_cache", test.url)
		require.NoError(t, err, test.url)
		assert.Equal(t, test.expected, got, test.url)
	}
}

func TestParsePath_Invalid(t *testing.T) {
	tests := []string{
		"/other/thumbnail/48/i/p.jpg",
		"/lt_cache/thumbnail/48",
		"/lt_cache/thumbnail/abc/i/p.jpg",
		"/lt_cache//48/i/p.jpg",
		"/lt_cache/thumbnail/48/",
		"/lt_cache",
	}

	for _, url := range tests {
		_, err := ParsePath("lt_cache", url)
		assert.ErrorIs(t, err, ErrInvalidRequest, url)
	}
}
