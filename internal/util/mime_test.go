package util

import (
	"testing"
)

func TestContentTypeForFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"JPEG", "image/jpeg"},
		{"PNG", "image/png"},
		{"GIF", "image/gif"},
		{"", "image/jpeg"},
	}

	for _, test := range tests {
		result := ContentTypeForFormat(test.format)
		if result != test.expected {
			t.Errorf("ContentTypeForFormat(%s) = %s, expected %s", test.format, result, test.expected)
		}
	}
}

func TestGetMIMEFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"lt_cache/thumbnail/48/i/p.jpg", "image/jpeg"},
		{"a/b.JPEG", "image/jpeg"},
		{"a/b.png", "image/png"},
		{"a/b.gif", "image/gif"},
		{"a/b.tiff", "image/tiff"},
		{"a/b.bmp", "image/bmp"},
		{"a/b.webp", "image/jpeg"}, // encoded as JPEG
		{"a/noext", "image/jpeg"},  // fallback
		{"a/b.txt", "image/jpeg"},  // not an image
	}

	for _, test := range tests {
		result := GetMIMEFromPath(test.path)
		if result != test.expected {
			t.Errorf("GetMIMEFromPath(%s) = %s, expected %s", test.path, result, test.expected)
		}
	}
}
