package edit

import (
	"fmt"
	"strings"
	"testing"

	"draftkit/internal/testsupport"
	"draftkit/internal/timeline"
)

// draft builds a minimal document from raw track objects and a raw materials
// object body.
func draft(t *testing.T, duration int64, materials string, tracks ...string) *timeline.Document {
	t.Helper()
	raw := fmt.Sprintf(`{"duration":%d,"tracks":[%s],"materials":{%s}}`, duration, strings.Join(tracks, ","), materials)
	return testsupport.ParseDraft(t, raw)
}

func mustTrack(t *testing.T, doc *timeline.Document, id string) *timeline.Track {
	t.Helper()
	track, ok := doc.TrackByID(id)
	if !ok {
		t.Fatalf("track %s missing", id)
	}
	return track
}

func mustSegment(t *testing.T, doc *timeline.Document, trackID, segID string) *timeline.Segment {
	t.Helper()
	seg, ok := mustTrack(t, doc, trackID).SegmentByID(segID)
	if !ok {
		t.Fatalf("segment %s missing from %s", segID, trackID)
	}
	return seg
}

func assertValid(t *testing.T, doc *timeline.Document) {
	t.Helper()
	if issues := doc.Validate(); len(issues) > 0 {
		t.Fatalf("document has issues: %v", issues)
	}
}

// reparse serializes doc and parses it again so assertions see what would
// be written to disk.
func reparse(t *testing.T, doc *timeline.Document) *timeline.Document {
	t.Helper()
	data, err := doc.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return testsupport.ParseDraft(t, string(data))
}
