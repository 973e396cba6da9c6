// Package integrity re-checks a document after a mutation and reports every
// violated invariant. A non-empty result means the mutation must not reach
// disk.
package integrity

import (
	"errors"
	"fmt"
	"strings"

	"draftkit/internal/mirror"
	"draftkit/internal/refindex"
	"draftkit/internal/timeline"
)

// ErrViolation marks integrity failures that are not reference problems.
var ErrViolation = errors.New("integrity violation")

// Snapshot records what a document looked like before an operation.
type Snapshot struct {
	Materials     map[string]struct{}
	Live          map[string]struct{}
	SegmentCounts map[string]int
	Tracks        int
}

// TakeSnapshot captures doc's material ids, live set, and per-track segment
// counts.
func TakeSnapshot(doc *timeline.Document) Snapshot {
	s := Snapshot{
		Materials:     make(map[string]struct{}),
		Live:          refindex.LiveMaterials(doc),
		SegmentCounts: make(map[string]int, len(doc.Tracks)),
		Tracks:        len(doc.Tracks),
	}
	for _, category := range doc.Categories() {
		for _, m := range doc.Materials[category] {
			s.Materials[m.ID] = struct{}{}
		}
	}
	for _, t := range doc.Tracks {
		s.SegmentCounts[t.ID] = len(t.Segments)
	}
	return s
}

// Expect declares what the operation is allowed to change.
type Expect struct {
	// SegmentCountsMayChange is set by operations that add or remove
	// segments or tracks.
	SegmentCountsMayChange bool
}

// Issues is the result of a check.
type Issues []timeline.Issue

// Err folds the issues into one error, nil when there are none. Reference
// problems match timeline.ErrReference; the rest match ErrViolation.
func (is Issues) Err() error {
	if len(is) == 0 {
		return nil
	}
	parts := make([]string, 0, len(is))
	marker := ErrViolation
	for _, issue := range is {
		parts = append(parts, issue.String())
		if issue.IsReference() {
			marker = timeline.ErrReference
		}
	}
	return fmt.Errorf("%w: %d issue(s): %s", marker, len(is), strings.Join(parts, "; "))
}

// Check validates after against the document invariants and against the
// snapshot taken before the operation ran.
func Check(before Snapshot, after *timeline.Document, expect Expect) Issues {
	var issues Issues
	for _, issue := range after.Validate() {
		if issue.Code == timeline.IssueUnresolvedMaterial || issue.Code == timeline.IssueUnresolvedExtraRef {
			_, existed := before.Materials[issue.MaterialID]
			_, wasLive := before.Live[issue.MaterialID]
			if existed && wasLive {
				issue.Code = timeline.IssueLivePruned
				issue.Message = fmt.Sprintf("material %s was pruned while segment %s still references it", issue.MaterialID, issue.SegmentID)
			}
		}
		issues = append(issues, issue)
	}

	if !expect.SegmentCountsMayChange {
		if len(after.Tracks) != before.Tracks {
			issues = append(issues, timeline.Issue{
				Code:    timeline.IssueSegmentCount,
				Message: fmt.Sprintf("track count changed from %d to %d", before.Tracks, len(after.Tracks)),
			})
		}
		for _, t := range after.Tracks {
			prev, ok := before.SegmentCounts[t.ID]
			if !ok || prev == len(t.Segments) {
				continue
			}
			issues = append(issues, timeline.Issue{
				Code:    timeline.IssueSegmentCount,
				TrackID: t.ID,
				Message: fmt.Sprintf("track %s segment count changed from %d to %d", t.ID, prev, len(t.Segments)),
			})
		}
	}
	return issues
}

// CheckPair validates the mirror on its own and checks that its tracks line
// up with the canonical document.
func CheckPair(canonical, mirrorDoc *timeline.Document) Issues {
	issues := Issues(mirrorDoc.Validate())
	return append(issues, mirror.CheckPair(canonical, mirrorDoc)...)
}
