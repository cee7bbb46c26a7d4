package credentials

import "strings"

const (
	maskVisiblePrefix = 8
	maskVisibleSuffix = 4
	maskRunLength     = 20
	maskRune          = "•"
)

// Mask shows the first 8 and last 4 characters of key around a fixed run
// of 20 bullets, whatever the key length. Keys shorter than 12 characters
// overlap rather than fail.
func Mask(key string) string {
	return MaskWith(key, maskRunLength)
}

// MaskWith is Mask with a run of n bullets.
func MaskWith(key string, n int) string {
	prefix := key
	if len(prefix) > maskVisiblePrefix {
		prefix = prefix[:maskVisiblePrefix]
	}
	suffix := key
	if len(suffix) > maskVisibleSuffix {
		suffix = suffix[len(suffix)-maskVisibleSuffix:]
	}
	return prefix + strings.Repeat(maskRune, n) + suffix
}
