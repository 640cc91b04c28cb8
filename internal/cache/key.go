package cache

import (
	"strconv"
	"strings"

	"github.com/hackclub/lazythumbs/internal/util"
)

const keyPrefix = "lazythumbs:"

// Key derives the cache key for one render request. Unset dimensions
// render as empty fields, so "48" and "x48" never collide.
func Key(sourcePath, action string, width, height, quality int) string {
	fields := []string{sourcePath, action, dim(width), dim(height), strconv.Itoa(quality)}
	return keyPrefix + util.MD5Hex(strings.Join(fields, ":"))
}

func dim(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
