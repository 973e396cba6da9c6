package timeline

import (
	"fmt"
	"strings"
)

// TrackPredicate selects tracks.
type TrackPredicate func(*Track) bool

// NamePrefix matches tracks whose name starts with prefix.
func NamePrefix(prefix string) TrackPredicate {
	return func(t *Track) bool { return strings.HasPrefix(t.Name, prefix) }
}

// KindIs matches tracks of the given kind.
func KindIs(kind Kind) TrackPredicate {
	return func(t *Track) bool { return t.Kind == kind }
}

// FindTrack returns the first track matching pred.
func (d *Document) FindTrack(pred TrackPredicate) *Track {
	for _, t := range d.Tracks {
		if pred(t) {
			return t
		}
	}
	return nil
}

// LargestTrack returns the track of kind with the most segments, preferring
// the earliest on ties. Automation sometimes duplicates or renames the track
// it writes to, so the busiest lane is the most reliable handle.
func (d *Document) LargestTrack(kind Kind) *Track {
	var best *Track
	for _, t := range d.Tracks {
		if t.Kind != kind {
			continue
		}
		if best == nil || len(t.Segments) > len(best.Segments) {
			best = t
		}
	}
	return best
}

// SelectTrack resolves a user supplied selector. Accepted forms, tried in
// order: an exact track id, an exact name, "largest:<kind>", "prefix:<p>".
func (d *Document) SelectTrack(selector string) (*Track, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, Wrap(ErrNotFound, "timeline", "select track", "empty selector", nil)
	}
	if t, ok := d.TrackByID(selector); ok {
		return t, nil
	}
	if t := d.FindTrack(func(t *Track) bool { return t.Name == selector }); t != nil {
		return t, nil
	}
	if kind, ok := strings.CutPrefix(selector, "largest:"); ok {
		k, valid := ParseKind(kind)
		if !valid {
			return nil, Wrap(ErrNotFound, "timeline", "select track", fmt.Sprintf("unknown kind %q", kind), nil)
		}
		if t := d.LargestTrack(k); t != nil {
			return t, nil
		}
	}
	if prefix, ok := strings.CutPrefix(selector, "prefix:"); ok && prefix != "" {
		if t := d.FindTrack(NamePrefix(prefix)); t != nil {
			return t, nil
		}
	}
	return nil, Wrap(ErrNotFound, "timeline", "select track", fmt.Sprintf("no track matches %q", selector), nil)
}
