package mirror

import (
	"bytes"
	"testing"

	"draftkit/internal/testsupport"
	"draftkit/internal/timeline"
)

const mirrorDraft = `{"id":"INFO","duration":1,"tracks":[{"id":"OLD","type":"video","name":"old","segments":[]}],"materials":{"videos":[]},"draft_root_path":"/projects/demo","last_modified_platform":{"os":"mac"}}`

func TestSyncCopiesTimelineAndKeepsOwnFields(t *testing.T) {
	canonical := testsupport.SampleDocument(t)
	mirror := testsupport.ParseDraft(t, mirrorDraft)

	Sync(canonical, mirror)
	if issues := CheckPair(canonical, mirror); len(issues) != 0 {
		t.Fatalf("pair mismatch after sync: %v", issues)
	}
	if mirror.DurationUS != canonical.DurationUS {
		t.Fatalf("duration %d, want %d", mirror.DurationUS, canonical.DurationUS)
	}

	data, err := mirror.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"id":"INFO"`, `"draft_root_path":"/projects/demo"`, `"T-VIDEO"`, `"M-A1"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Fatalf("mirror missing %s: %s", want, data)
		}
	}
	if bytes.Contains(data, []byte(`"OLD"`)) {
		t.Fatal("stale mirror track survived sync")
	}

	reparsed := testsupport.ParseDraft(t, string(data))
	if issues := reparsed.Validate(); len(issues) != 0 {
		t.Fatalf("synced mirror invalid: %v", issues)
	}
}

func TestSyncIsDeep(t *testing.T) {
	canonical := testsupport.SampleDocument(t)
	mirror := testsupport.ParseDraft(t, mirrorDraft)
	Sync(canonical, mirror)

	canonical.Tracks[0].Name = "changed"
	canonical.Tracks[0].Segments[0].ExtraRefs[0] = "X"
	if mirror.Tracks[0].Name == "changed" || mirror.Tracks[0].Segments[0].ExtraRefs[0] == "X" {
		t.Fatal("mirror shares state with canonical")
	}
}

func TestCheckPairReportsDivergence(t *testing.T) {
	canonical := testsupport.SampleDocument(t)
	mirror := testsupport.ParseDraft(t, mirrorDraft)
	issues := CheckPair(canonical, mirror)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
	for _, issue := range issues {
		if issue.Code != timeline.IssueMirrorTracks {
			t.Fatalf("unexpected code %s", issue.Code)
		}
	}
}
