package textutil

import (
	"math"
	"strings"
)

// Fingerprint is a character-trigram frequency vector.
type Fingerprint struct {
	grams map[string]float64
	norm  float64
}

// NewFingerprint builds a fingerprint from text. Returns nil when text is
// blank.
func NewFingerprint(text string) *Fingerprint {
	grams := Trigrams(text)
	if len(grams) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(grams))
	for _, g := range grams {
		counts[g]++
	}
	var sum float64
	for _, count := range counts {
		sum += count * count
	}
	return &Fingerprint{grams: counts, norm: math.Sqrt(sum)}
}

// Trigrams lowercases and normalizes text, pads it with one space on each
// side, and returns every three-rune window.
func Trigrams(text string) []string {
	key := strings.ToLower(NormalizeKey(text))
	if key == "" {
		return nil
	}
	runes := []rune(" " + key + " ")
	out := make([]string, 0, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}
