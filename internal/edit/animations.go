package edit

import (
	"fmt"

	"draftkit/internal/refindex"
	"draftkit/internal/timeline"
)

// Names written on generated fade entries.
const (
	FadeInName  = "Fade In"
	FadeOutName = "Fade Out"
)

// FadeSpec describes the intro/outro animation pair added to each segment.
type FadeSpec struct {
	DurationUS    int64
	InResourceID  string
	OutResourceID string
}

// InjectFades gives every segment of track one animation material holding a
// fade-in at the start and a fade-out ending at the segment's end. Existing
// animation refs on the track are replaced, not accumulated.
func InjectFades(doc *timeline.Document, track *timeline.Track, spec FadeSpec) (InjectResult, error) {
	var result InjectResult
	if spec.DurationUS <= 0 {
		return result, fmt.Errorf("inject fades: duration must be positive, got %d", spec.DurationUS)
	}

	stripped := stripRefs(track, doc.MaterialIDs(timeline.CategoryAnimations))
	result.Replaced = len(stripped)
	result.Pruned = pruneIfDead(doc, stripped)

	index := refindex.New(doc)
	for _, seg := range track.Segments {
		id, err := index.NewID(refindex.ScopeMaterials)
		if err != nil {
			return result, err
		}
		doc.AddMaterial(timeline.NewAnimationMaterial(id, FadeEntries(seg.Target.DurationUS, spec)))
		seg.ExtraRefs = append(seg.ExtraRefs, id)
		result.Injected++
	}
	return result, nil
}

// FadeEntries returns the fade-in and fade-out entries for a segment of the
// given duration.
func FadeEntries(segmentUS int64, spec FadeSpec) []timeline.AnimationEntry {
	return []timeline.AnimationEntry{
		{StartUS: 0, DurationUS: spec.DurationUS, Name: FadeInName, ResourceID: spec.InResourceID, Type: "in"},
		{StartUS: max(0, segmentUS-spec.DurationUS), DurationUS: spec.DurationUS, Name: FadeOutName, ResourceID: spec.OutResourceID, Type: "out"},
	}
}
