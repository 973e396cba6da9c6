package edit

import (
	"fmt"
	"strings"

	"draftkit/internal/textutil"
	"draftkit/internal/timeline"
)

// namer hands out unique, non-empty track names.
type namer struct {
	used     map[string]struct{}
	counters map[timeline.Kind]int
}

func newNamer() *namer {
	return &namer{used: make(map[string]struct{}), counters: make(map[timeline.Kind]int)}
}

// assign keeps a non-blank name exactly as authored unless it collides.
func (n *namer) assign(t *timeline.Track) string {
	base := strings.TrimSpace(t.Name)
	candidate := t.Name
	if base == "" {
		n.counters[t.Kind]++
		base = fmt.Sprintf("%s_%d", t.Kind, n.counters[t.Kind])
		candidate = base
	}
	for i := 2; n.taken(candidate); i++ {
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	n.reserve(candidate)
	return candidate
}

func (n *namer) taken(name string) bool {
	_, ok := n.used[textutil.NormalizeKey(name)]
	return ok
}

func (n *namer) reserve(name string) {
	n.used[textutil.NormalizeKey(name)] = struct{}{}
}

// NormalizeNames gives every canonical track a unique non-empty name, then
// applies the same names to the mirror's tracks by id. Mirror tracks the
// canonical document does not have are named by the same rules without
// reusing any assigned name. mirror may be nil. The returned map covers
// every renamed or confirmed track id.
func NormalizeNames(canonical, mirror *timeline.Document) map[string]string {
	names := make(map[string]string, len(canonical.Tracks))
	n := newNamer()
	for _, t := range canonical.Tracks {
		t.Name = n.assign(t)
		names[t.ID] = t.Name
	}
	if mirror == nil {
		return names
	}

	var orphans []*timeline.Track
	for _, t := range mirror.Tracks {
		if name, ok := names[t.ID]; ok {
			t.Name = name
			continue
		}
		orphans = append(orphans, t)
	}
	for _, t := range orphans {
		t.Name = n.assign(t)
		names[t.ID] = t.Name
	}
	return names
}
