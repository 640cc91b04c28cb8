package util

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// MD5Hex returns the hex MD5 digest of s
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashBytes computes SHA256 hash of the given bytes
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// ETag returns a strong entity tag for data, quoted for use in a header.
func ETag(data []byte) string {
	return `"` + HashBytes(data)[:32] + `"`
}
