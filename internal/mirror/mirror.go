// Package mirror keeps the secondary document of a project pair in step with
// the canonical one.
package mirror

import (
	"fmt"

	"draftkit/internal/timeline"
)

// Sync rebuilds mirror's tracks, materials, and duration from canonical.
// Every other top-level field of mirror is kept. The copy is deep, so later
// edits to either document do not leak into the other.
func Sync(canonical, mirror *timeline.Document) {
	mirror.CopyTimelineFrom(canonical)
}

// CheckPair reports tracks whose ids differ between the two documents,
// position by position.
func CheckPair(canonical, mirror *timeline.Document) []timeline.Issue {
	var issues []timeline.Issue
	n := max(len(canonical.Tracks), len(mirror.Tracks))
	for i := 0; i < n; i++ {
		var want, got string
		if i < len(canonical.Tracks) {
			want = canonical.Tracks[i].ID
		}
		if i < len(mirror.Tracks) {
			got = mirror.Tracks[i].ID
		}
		if want == got {
			continue
		}
		issues = append(issues, timeline.Issue{
			Code:    timeline.IssueMirrorTracks,
			TrackID: want,
			Message: fmt.Sprintf("track %d is %q in the canonical document but %q in the mirror", i, want, got),
		})
	}
	return issues
}
