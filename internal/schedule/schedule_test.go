package schedule

import (
	"errors"
	"strings"
	"testing"

	"draftkit/internal/timeline"
)

func repeat(n int, sec float64) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{DurationSec: sec}
	}
	return items
}

func TestComputeFourItemsAtThirtyFPS(t *testing.T) {
	s, err := Compute(repeat(4, 5), 30, 0.5)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.OverlapFrames != 15 {
		t.Fatalf("overlap = %d, want 15", s.OverlapFrames)
	}
	if s.TotalFrames != 4*150-3*15 {
		t.Fatalf("total = %d, want 555", s.TotalFrames)
	}
	wantStarts := []int{0, 135, 270, 405}
	for i, p := range s.Placed {
		if p.StartFrame != wantStarts[i] || p.DurationFrame != 150 {
			t.Fatalf("placement %d = %+v", i, p)
		}
	}
	for i := 1; i < len(s.Placed); i++ {
		if shared := s.Placed[i-1].EndFrame() - s.Placed[i].StartFrame; shared != 15 {
			t.Fatalf("items %d/%d share %d frames", i-1, i, shared)
		}
	}
}

func TestComputeMinimumOneFrame(t *testing.T) {
	s, err := Compute([]Item{{DurationSec: 0.001}}, 24, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.Placed[0].DurationFrame != 1 || s.TotalFrames != 1 {
		t.Fatalf("unexpected schedule %+v", s)
	}
}

func TestComputeRejectsBadParameters(t *testing.T) {
	if _, err := Compute(repeat(1, 1), 0, 0); err == nil {
		t.Fatal("expected error for zero fps")
	}
	if _, err := Compute(repeat(1, 1), 30, -1); err == nil {
		t.Fatal("expected error for negative crossfade")
	}
}

func TestComputeEmpty(t *testing.T) {
	s, err := Compute(nil, 30, 0.5)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.TotalFrames != 0 || len(s.Placed) != 0 {
		t.Fatalf("unexpected schedule %+v", s)
	}
}

func TestAlignCaptionsSplitsOverlap(t *testing.T) {
	s, _ := Compute(repeat(3, 5), 30, 0.5)
	captions, err := AlignCaptions(s, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("AlignCaptions: %v", err)
	}
	want := []Caption{
		{StartFrame: 0, EndFrame: 142, Text: "a"},
		{StartFrame: 142, EndFrame: 277, Text: "b"},
		{StartFrame: 277, EndFrame: 420, Text: "c"},
	}
	for i, c := range captions {
		if c != want[i] {
			t.Fatalf("caption %d = %+v, want %+v", i, c, want[i])
		}
	}
}

func TestAlignCaptionsClampsShortItems(t *testing.T) {
	// Items shorter than the overlap make the cursor run backwards; captions
	// must still be monotonic and non-empty.
	items := []Item{{DurationSec: 2}, {DurationSec: 0.1}, {DurationSec: 0.1}, {DurationSec: 2}}
	s, err := Compute(items, 30, 1)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	captions, err := AlignCaptions(s, []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("AlignCaptions: %v", err)
	}
	prevEnd := 0
	for i, c := range captions {
		if c.EndFrame <= c.StartFrame {
			t.Fatalf("caption %d is empty: %+v", i, c)
		}
		if c.StartFrame < prevEnd {
			t.Fatalf("caption %d overlaps previous: %+v (prev end %d)", i, c, prevEnd)
		}
		prevEnd = c.EndFrame
	}
}

func TestAlignCaptionsCountMismatch(t *testing.T) {
	s, _ := Compute(repeat(2, 1), 30, 0)
	if _, err := AlignCaptions(s, []string{"only one"}); !errors.Is(err, timeline.ErrCountMismatch) {
		t.Fatalf("expected ErrCountMismatch, got %v", err)
	}
}

func TestCues(t *testing.T) {
	s, _ := Compute(repeat(2, 5), 30, 0.5)
	cues := s.Cues()
	if cues[0].StartSec != 0 || cues[0].EndSec != 5 || cues[1].StartSec != 4.5 || cues[1].EndSec != 9.5 {
		t.Fatalf("unexpected cues %+v", cues)
	}
}

func TestBuildFromJSON(t *testing.T) {
	input := `[{"summary":"intro","duration_sec":5},{"summary":"outro","duration_sec":5}]`
	s, captions, err := Build(strings.NewReader(input), 30, 0.5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.TotalFrames != 285 || len(captions) != 2 || captions[1].Text != "outro" {
		t.Fatalf("unexpected build result %+v %+v", s, captions)
	}

	if _, _, err := Build(strings.NewReader(`[{"summary":"x","duration_sec":0}]`), 30, 0); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if _, _, err := Build(strings.NewReader(`[]`), 30, 0); err == nil {
		t.Fatal("expected error for empty item list")
	}
}
