package textutil

import "testing"

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("Slide 04 (final).PNG"); got != "slide_04__final__png" {
		t.Fatalf("SanitizeToken = %q", got)
	}
	if got := SanitizeToken("***"); got != "unknown" {
		t.Fatalf("SanitizeToken = %q", got)
	}
}
