package edit

import (
	"fmt"

	"draftkit/internal/refindex"
	"draftkit/internal/timeline"
)

// DefaultAdjacencyToleranceUS is the largest gap or overlap between two
// segments that still counts as adjacent.
const DefaultAdjacencyToleranceUS = 20_000

// TransitionSpec describes the crossfade attached between adjacent segments.
type TransitionSpec struct {
	DurationUS int64
	// Tolerance is the adjacency tolerance in microseconds. Nil selects
	// DefaultAdjacencyToleranceUS; zero demands exact adjacency.
	Tolerance  *int64
	Name       string
	EffectID   string
	ResourceID string
}

// InjectResult counts what an injection pass did.
type InjectResult struct {
	Injected int `json:"injected"`
	Replaced int `json:"replaced"`
	Pruned   int `json:"pruned"`
}

// InjectCrossfades rebuilds the crossfades on track. Every transition ref on
// the track is stripped first and the transitions left unreferenced are
// pruned, so running it twice yields the same structure. A new transition
// is attached to the later segment of each adjacent pair.
func InjectCrossfades(doc *timeline.Document, track *timeline.Track, spec TransitionSpec) (InjectResult, error) {
	var result InjectResult
	if spec.DurationUS <= 0 {
		return result, fmt.Errorf("inject crossfades: duration must be positive, got %d", spec.DurationUS)
	}
	tolerance := int64(DefaultAdjacencyToleranceUS)
	if spec.Tolerance != nil {
		tolerance = *spec.Tolerance
	}
	if tolerance < 0 {
		return result, fmt.Errorf("inject crossfades: tolerance must not be negative, got %d", tolerance)
	}

	stripped := stripRefs(track, doc.MaterialIDs(timeline.CategoryTransitions))
	result.Replaced = len(stripped)
	result.Pruned = pruneIfDead(doc, stripped)

	index := refindex.New(doc)
	for i := 0; i+1 < len(track.Segments); i++ {
		cur, next := track.Segments[i], track.Segments[i+1]
		gap := next.Target.StartUS - cur.Target.EndUS()
		if gap > tolerance || gap < -tolerance {
			continue
		}
		id, err := index.NewID(refindex.ScopeMaterials)
		if err != nil {
			return result, err
		}
		doc.AddMaterial(timeline.NewTransitionMaterial(id, timeline.Transition{
			Name:       spec.Name,
			EffectID:   spec.EffectID,
			ResourceID: spec.ResourceID,
			DurationUS: spec.DurationUS,
			IsOverlap:  true,
		}))
		next.ExtraRefs = append(next.ExtraRefs, id)
		result.Injected++
	}
	return result, nil
}
