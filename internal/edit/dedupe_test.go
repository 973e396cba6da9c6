package edit

import (
	"testing"

	"draftkit/internal/timeline"
)

const dedupeMaterials = `"texts":[{"id":"M-T1"},{"id":"M-T2"},{"id":"M-T3"}],"videos":[{"id":"M-V9","path":"/v.mp4"}],"speeds":[{"id":"M-SHARED","speed":1.0}]`

func dedupeDraft(t *testing.T) *timeline.Document {
	t.Helper()
	return draft(t, 5_000_000, dedupeMaterials,
		`{"id":"T1","type":"text","name":"auto_captions","segments":[]}`,
		`{"id":"T2","type":"text","name":"auto_captions","segments":[{"id":"S5","material_id":"M-T1","target_timerange":{"start":0,"duration":1000000}}]}`,
		`{"id":"T3","type":"text","name":"auto_captions","segments":[{"id":"S6","material_id":"M-T2","target_timerange":{"start":0,"duration":1000000},"extra_material_refs":["M-SHARED"]}]}`,
		`{"id":"T4","type":"text","name":"auto_title","segments":[{"id":"S7","material_id":"M-T3","target_timerange":{"start":0,"duration":1000000}}]}`,
		`{"id":"T5","type":"text","name":"auto_title","segments":[{"id":"S8","material_id":"M-T3","target_timerange":{"start":0,"duration":1000000}}]}`,
		`{"id":"T6","type":"video","name":"hand","segments":[{"id":"S9","material_id":"M-V9","target_timerange":{"start":0,"duration":5000000},"extra_material_refs":["M-SHARED"]}]}`,
	)
}

func TestDedupeTracks(t *testing.T) {
	doc := dedupeDraft(t)
	assertValid(t, doc)

	result := DedupeTracks(doc, AutomationPredicate("auto_", []string{"auto_title"}))
	if result.TracksRemoved != 2 || result.MaterialsPruned != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	var ids []string
	for _, tr := range doc.Tracks {
		ids = append(ids, tr.ID)
	}
	want := []string{"T2", "T4", "T5", "T6"}
	if len(ids) != len(want) {
		t.Fatalf("remaining tracks %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("remaining tracks %v, want %v", ids, want)
		}
	}
	if _, ok := doc.MaterialByID("M-T2"); ok {
		t.Fatal("material used only by a removed track was kept")
	}
	if _, ok := doc.MaterialByID("M-SHARED"); !ok {
		t.Fatal("material still used by a surviving track was pruned")
	}
	assertValid(t, reparse(t, doc))
}

func TestDedupeKeepsFirstWhenNoneHasSegments(t *testing.T) {
	doc := draft(t, 0, `"texts":[]`,
		`{"id":"A","type":"text","name":"auto_x","segments":[]}`,
		`{"id":"B","type":"text","name":"auto_x","segments":[]}`,
	)
	result := DedupeTracks(doc, AutomationPredicate("auto_", nil))
	if result.TracksRemoved != 1 || len(doc.Tracks) != 1 || doc.Tracks[0].ID != "A" {
		t.Fatalf("unexpected outcome %+v tracks=%d", result, len(doc.Tracks))
	}
}

func TestDedupeNeverEmptiesAGroup(t *testing.T) {
	doc := dedupeDraft(t)
	DedupeTracks(doc, func(*timeline.Track) bool { return true })
	seen := map[string]int{}
	for _, tr := range doc.Tracks {
		seen[tr.Name]++
	}
	for _, name := range []string{"auto_captions", "auto_title", "hand"} {
		if seen[name] != 1 {
			t.Fatalf("group %s has %d tracks", name, seen[name])
		}
	}
}

func TestAutomationPredicate(t *testing.T) {
	pred := AutomationPredicate("auto_", []string{"auto_title"})
	cases := map[string]bool{
		"auto_captions": true,
		"auto_title":    false,
		"captions":      false,
		"":              false,
	}
	for name, want := range cases {
		if got := pred(&timeline.Track{Name: name}); got != want {
			t.Errorf("pred(%q) = %v, want %v", name, got, want)
		}
	}
	if AutomationPredicate("", nil)(&timeline.Track{Name: "anything"}) {
		t.Fatal("empty prefix should match nothing")
	}
}
