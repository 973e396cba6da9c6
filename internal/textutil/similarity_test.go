package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
		want float64
	}{
		{"both nil", nil, nil, 0},
		{"a nil", nil, NewFingerprint("narration"), 0},
		{"b nil", NewFingerprint("narration"), nil, 0},
		{"blank", NewFingerprint("   "), NewFingerprint("narration"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	got := CosineSimilarity(NewFingerprint("auto_captions"), NewFingerprint("AUTO_CAPTIONS"))
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("CosineSimilarity(identical) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityDifferent(t *testing.T) {
	got := CosineSimilarity(NewFingerprint("abc"), NewFingerprint("xyz"))
	if got != 0 {
		t.Errorf("CosineSimilarity(different) = %v, want 0", got)
	}
}

func TestTrigrams(t *testing.T) {
	got := Trigrams("Ab")
	want := []string{" ab", "ab "}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Trigrams = %q, want %q", got, want)
	}
	if Trigrams("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
}

func TestClosest(t *testing.T) {
	candidates := []string{"narration", "video_1", "auto_captions"}
	got, ok := Closest("auto_caption", candidates, 0.5)
	if !ok || got != "auto_captions" {
		t.Fatalf("Closest = %q, %v", got, ok)
	}
	if _, ok := Closest("zzzz", candidates, 0.5); ok {
		t.Fatal("expected no suggestion for unrelated query")
	}
}

func TestNormalizeKey(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if NormalizeKey(composed) != NormalizeKey(" "+decomposed+" ") {
		t.Fatal("expected composed and decomposed forms to share a key")
	}
}
