package util

import (
	"strings"

	"github.com/disintegration/imaging"
)

// ContentTypeForFormat maps an encoder format name ("JPEG", "PNG") to the
// Content-Type served with it.
func ContentTypeForFormat(format string) string {
	if format == "" {
		return "image/jpeg"
	}
	return "image/" + strings.ToLower(format)
}

// FormatFromPath infers the output format from a file extension. Paths
// without an extension imaging can encode (.webp, none at all) are JPEG.
func FormatFromPath(p string) imaging.Format {
	format, err := imaging.FormatFromFilename(p)
	if err != nil {
		return imaging.JPEG
	}
	return format
}

// GetMIMEFromPath returns the Content-Type of the image encoded for path.
func GetMIMEFromPath(p string) string {
	return ContentTypeForFormat(FormatFromPath(p).String())
}
