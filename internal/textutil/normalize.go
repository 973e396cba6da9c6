package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeKey returns the NFC form of s with surrounding whitespace
// removed. Names that render identically produce the same key.
func NormalizeKey(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
