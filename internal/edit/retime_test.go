package edit

import (
	"errors"
	"math"
	"strings"
	"testing"

	"draftkit/internal/testsupport"
	"draftkit/internal/timeline"
)

func TestRetimeSetsTargetRenderAndSpeed(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	track := mustTrack(t, doc, "T-VIDEO")

	cues := []Cue{{StartSec: 0, EndSec: 2.5}, {StartSec: 2.5, EndSec: 5.0004}, {StartSec: 5.0004, EndSec: 8}}
	result, err := Retime(doc, track, cues)
	if err != nil {
		t.Fatalf("Retime: %v", err)
	}
	if result.SegmentsRetimed != 3 || result.SpeedsChanged != 2 {
		t.Fatalf("unexpected result %+v", result)
	}

	out := reparse(t, doc)
	want := []timeline.TimeRange{
		{StartUS: 0, DurationUS: 2_500_000},
		{StartUS: 2_500_000, DurationUS: 2_500_000},
		{StartUS: 5_000_000, DurationUS: 3_000_000},
	}
	for i, seg := range mustTrack(t, out, "T-VIDEO").Segments {
		if seg.Target != want[i] {
			t.Fatalf("segment %s target = %+v, want %+v", seg.ID, seg.Target, want[i])
		}
		if seg.Render == nil || *seg.Render != want[i] {
			t.Fatalf("segment %s render not mirrored: %+v", seg.ID, seg.Render)
		}
		if seg.Source.StartUS != 0 || seg.Source.DurationUS != 3_000_000 {
			t.Fatalf("segment %s source changed: %+v", seg.ID, seg.Source)
		}
		wantSpeed := 3_000_000 / float64(want[i].DurationUS)
		if math.Abs(seg.Speed-wantSpeed) > 1e-9 {
			t.Fatalf("segment %s speed = %v, want %v", seg.ID, seg.Speed, wantSpeed)
		}
	}
	if got := mustSegment(t, out, "T-VIDEO", "S1").MaterialID; got != "M-V1" {
		t.Fatalf("material id changed to %s", got)
	}

	speed, _ := out.MaterialByID("SPD-1")
	if v, ok := speed.Number("speed"); !ok || math.Abs(v-1.2) > 1e-9 {
		t.Fatalf("speed material = %v, %v", v, ok)
	}
}

func TestRetimeDurationsMatchCuesWithinAMillisecond(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	track := mustTrack(t, doc, "T-VIDEO")
	cues := []Cue{{StartSec: 0.0004, EndSec: 1.2345}, {StartSec: 1.2345, EndSec: 3.33333}, {StartSec: 3.33333, EndSec: 7.7777}}
	if _, err := Retime(doc, track, cues); err != nil {
		t.Fatalf("Retime: %v", err)
	}
	for i, seg := range track.Segments {
		want := (cues[i].EndSec - cues[i].StartSec) * 1_000_000
		if math.Abs(float64(seg.Target.DurationUS)-want) > 1000 {
			t.Fatalf("segment %d duration %d, want ~%v", i, seg.Target.DurationUS, want)
		}
		if seg.Target.StartUS%1000 != 0 || seg.Target.DurationUS%1000 != 0 {
			t.Fatalf("segment %d not millisecond aligned: %+v", i, seg.Target)
		}
	}
}

func TestRetimeCountMismatchLeavesTrackUntouched(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	track := mustTrack(t, doc, "T-VIDEO")
	_, err := Retime(doc, track, []Cue{{StartSec: 0, EndSec: 1}})
	if !errors.Is(err, timeline.ErrCountMismatch) {
		t.Fatalf("expected ErrCountMismatch, got %v", err)
	}
	if track.Segments[0].Target.DurationUS != 3_000_000 {
		t.Fatal("track modified despite mismatch")
	}
}

func TestRetimeRejectsInvalidCueBeforeChangingAnything(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	track := mustTrack(t, doc, "T-VIDEO")
	cues := []Cue{{StartSec: 0, EndSec: 1}, {StartSec: 1, EndSec: 2}, {StartSec: 2, EndSec: 2.0004}}
	_, err := Retime(doc, track, cues)
	if !errors.Is(err, timeline.ErrInvalidCue) {
		t.Fatalf("expected ErrInvalidCue, got %v", err)
	}
	if track.Segments[0].Target.DurationUS != 3_000_000 {
		t.Fatal("first segment changed before validation finished")
	}

	_, err = Retime(doc, track, []Cue{{StartSec: -1, EndSec: 1}, {StartSec: 1, EndSec: 2}, {StartSec: 2, EndSec: 3}})
	if !errors.Is(err, timeline.ErrInvalidCue) {
		t.Fatalf("expected ErrInvalidCue for negative start, got %v", err)
	}
}

func TestRetimeWithoutSourceKeepsSpeed(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	track := mustTrack(t, doc, "T-AUDIO")
	result, err := Retime(doc, track, []Cue{{StartSec: 1, EndSec: 4}})
	if err != nil {
		t.Fatalf("Retime: %v", err)
	}
	if result.SpeedsChanged != 0 || track.Segments[0].Speed != 1.0 {
		t.Fatalf("unexpected speed change: %+v speed=%v", result, track.Segments[0].Speed)
	}
	if track.Segments[0].Render != nil {
		t.Fatal("render range created where none existed")
	}
}

func TestLoadCues(t *testing.T) {
	cues, err := LoadCues(strings.NewReader(`[{"start_sec":0,"end_sec":1.5},{"start_sec":1.5,"end_sec":3}]`))
	if err != nil {
		t.Fatalf("LoadCues: %v", err)
	}
	if len(cues) != 2 || cues[1].EndSec != 3 {
		t.Fatalf("unexpected cues %+v", cues)
	}
	if _, err := LoadCues(strings.NewReader(`[{"begin":0}]`)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}
