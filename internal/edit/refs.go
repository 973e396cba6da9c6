package edit

import (
	"draftkit/internal/refindex"
	"draftkit/internal/timeline"
)

// stripRefs removes every extra ref that is a member of ids from the track's
// segments, keeping the order of the rest. It returns the removed ids.
func stripRefs(track *timeline.Track, ids map[string]struct{}) map[string]struct{} {
	removed := make(map[string]struct{})
	for _, seg := range track.Segments {
		kept := seg.ExtraRefs[:0]
		for _, ref := range seg.ExtraRefs {
			if _, drop := ids[ref]; drop {
				removed[ref] = struct{}{}
				continue
			}
			kept = append(kept, ref)
		}
		seg.ExtraRefs = kept
	}
	return removed
}

// pruneIfDead removes the candidates no segment references any more.
func pruneIfDead(doc *timeline.Document, candidates map[string]struct{}) int {
	if len(candidates) == 0 {
		return 0
	}
	live := refindex.LiveMaterials(doc)
	dead := make(map[string]struct{}, len(candidates))
	for id := range candidates {
		if _, ok := live[id]; !ok {
			dead[id] = struct{}{}
		}
	}
	return doc.RemoveMaterials(dead)
}
