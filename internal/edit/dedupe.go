package edit

import (
	"slices"
	"strings"

	"draftkit/internal/textutil"
	"draftkit/internal/timeline"
)

// DedupeResult reports the tracks and materials a dedupe pass removed.
type DedupeResult struct {
	TracksRemoved   int      `json:"tracks_removed"`
	MaterialsPruned int      `json:"materials_pruned"`
	RemovedTracks   []string `json:"removed_tracks,omitempty"`
}

// AutomationPredicate reports a track as automation-authored when its name
// starts with prefix and is not one of the template names. An empty prefix
// matches nothing.
func AutomationPredicate(prefix string, templates []string) func(*timeline.Track) bool {
	allow := make(map[string]struct{}, len(templates))
	for _, name := range templates {
		allow[textutil.NormalizeKey(name)] = struct{}{}
	}
	return func(t *timeline.Track) bool {
		if prefix == "" || !strings.HasPrefix(t.Name, prefix) {
			return false
		}
		_, template := allow[textutil.NormalizeKey(t.Name)]
		return !template
	}
}

// DedupeTracks collapses each group of same-named automation tracks to a
// single survivor: the first one with segments, or the first one when none
// has any. Tracks without a name are never grouped. Materials referenced
// only by removed tracks are pruned; anything a remaining track still uses
// is kept.
func DedupeTracks(doc *timeline.Document, isAutomation func(*timeline.Track) bool) DedupeResult {
	var result DedupeResult

	groups := make(map[string][]*timeline.Track)
	var order []string
	for _, t := range doc.Tracks {
		if !isAutomation(t) {
			continue
		}
		key := textutil.NormalizeKey(t.Name)
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	remove := make(map[string]struct{})
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		survivor := group[0]
		if i := slices.IndexFunc(group, func(t *timeline.Track) bool { return len(t.Segments) > 0 }); i >= 0 {
			survivor = group[i]
		}
		for _, t := range group {
			if t != survivor {
				remove[t.ID] = struct{}{}
				result.RemovedTracks = append(result.RemovedTracks, t.ID)
			}
		}
	}
	if len(remove) == 0 {
		return result
	}

	removedRefs := make(map[string]struct{})
	keptRefs := make(map[string]struct{})
	for _, t := range doc.Tracks {
		dst := keptRefs
		if _, gone := remove[t.ID]; gone {
			dst = removedRefs
		}
		for _, seg := range t.Segments {
			for _, ref := range seg.References() {
				dst[ref] = struct{}{}
			}
		}
	}
	prune := make(map[string]struct{})
	for id := range removedRefs {
		if _, kept := keptRefs[id]; !kept {
			prune[id] = struct{}{}
		}
	}

	result.TracksRemoved = doc.RemoveTracks(remove)
	result.MaterialsPruned = doc.RemoveMaterials(prune)
	return result
}
