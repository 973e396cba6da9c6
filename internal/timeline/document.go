package timeline

import (
	"github.com/tidwall/gjson"
)

// Document is one parsed draft file. It owns its tracks and materials.
type Document struct {
	Tracks     []*Track
	Materials  map[string][]*Material
	DurationUS int64

	categories   []string
	raw          []byte
	tracksRaw    string
	materialsRaw []byte
}

// Parse decodes a draft document. Malformed JSON, a missing tracks or
// materials root key, and entities missing required fields fail with
// ErrParse.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, parseError("malformed JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, parseError("document root is not an object")
	}
	tracks := root.Get("tracks")
	if !tracks.IsArray() {
		return nil, parseError("missing tracks array")
	}
	materials := root.Get("materials")
	if !materials.IsObject() {
		return nil, parseError("missing materials object")
	}

	doc := &Document{
		Materials:    make(map[string][]*Material),
		DurationUS:   root.Get("duration").Int(),
		raw:          cloneBytes(data),
		tracksRaw:    tracks.Raw,
		materialsRaw: []byte(materials.Raw),
	}

	for i, item := range tracks.Array() {
		track, err := parseTrack(item, i)
		if err != nil {
			return nil, err
		}
		doc.Tracks = append(doc.Tracks, track)
	}

	var parseErr error
	materials.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			return true
		}
		category := key.String()
		doc.categories = append(doc.categories, category)
		list := make([]*Material, 0)
		for i, item := range value.Array() {
			m, err := parseMaterial(category, item, i)
			if err != nil {
				parseErr = err
				return false
			}
			list = append(list, m)
		}
		doc.Materials[category] = list
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return doc, nil
}

// Serialize encodes the document. Unmodelled fields are preserved.
func (d *Document) Serialize() ([]byte, error) {
	out := cloneBytes(d.raw)
	if len(out) == 0 {
		out = []byte(`{"duration":0,"tracks":[],"materials":{}}`)
	}
	var err error
	if d.DurationUS != 0 || has(out, "duration") {
		if out, err = setInt(out, "duration", d.DurationUS); err != nil {
			return nil, Wrap(ErrParse, "timeline", "serialize", "duration", err)
		}
	}

	tracks := make([][]byte, 0, len(d.Tracks))
	for _, t := range d.Tracks {
		enc, err := t.encode()
		if err != nil {
			return nil, Wrap(ErrParse, "timeline", "serialize", "track "+t.ID, err)
		}
		tracks = append(tracks, enc)
	}
	if out, err = setRaw(out, "tracks", joinArray(d.tracksRaw, tracks)); err != nil {
		return nil, Wrap(ErrParse, "timeline", "serialize", "tracks", err)
	}

	materials := cloneBytes(d.materialsRaw)
	if len(materials) == 0 {
		materials = []byte("{}")
	}
	for _, category := range d.categories {
		path := escapePath(category)
		list := d.Materials[category]
		elems := make([][]byte, 0, len(list))
		for _, m := range list {
			enc, err := m.encode()
			if err != nil {
				return nil, Wrap(ErrParse, "timeline", "serialize", "material "+m.ID, err)
			}
			elems = append(elems, enc)
		}
		orig := gjson.GetBytes(d.materialsRaw, path).Raw
		if materials, err = setRaw(materials, path, joinArray(orig, elems)); err != nil {
			return nil, Wrap(ErrParse, "timeline", "serialize", "materials."+category, err)
		}
	}
	if out, err = setRaw(out, "materials", materials); err != nil {
		return nil, Wrap(ErrParse, "timeline", "serialize", "materials", err)
	}
	return out, nil
}

// Categories returns material category names in document order.
func (d *Document) Categories() []string {
	return append([]string(nil), d.categories...)
}

// MaterialByID searches every category for id.
func (d *Document) MaterialByID(id string) (*Material, bool) {
	for _, category := range d.categories {
		for _, m := range d.Materials[category] {
			if m.ID == id {
				return m, true
			}
		}
	}
	return nil, false
}

// MaterialIDs returns the ids of every material in a category.
func (d *Document) MaterialIDs(category string) map[string]struct{} {
	out := make(map[string]struct{}, len(d.Materials[category]))
	for _, m := range d.Materials[category] {
		out[m.ID] = struct{}{}
	}
	return out
}

// AddMaterial appends m to its category, creating the category if needed.
func (d *Document) AddMaterial(m *Material) {
	if d.Materials == nil {
		d.Materials = make(map[string][]*Material)
	}
	if _, ok := d.Materials[m.Category]; !ok {
		d.categories = append(d.categories, m.Category)
	}
	d.Materials[m.Category] = append(d.Materials[m.Category], m)
}

// ReplaceMaterial swaps the material with oldID for m, keeping its position.
// m must belong to the same category.
func (d *Document) ReplaceMaterial(oldID string, m *Material) bool {
	for _, category := range d.categories {
		list := d.Materials[category]
		for i, existing := range list {
			if existing.ID != oldID {
				continue
			}
			if m.Category != category {
				return false
			}
			list[i] = m
			return true
		}
	}
	return false
}

// RemoveMaterials drops every material whose id is in ids and returns how
// many entries were removed.
func (d *Document) RemoveMaterials(ids map[string]struct{}) int {
	if len(ids) == 0 {
		return 0
	}
	removed := 0
	for _, category := range d.categories {
		list := d.Materials[category]
		kept := list[:0]
		for _, m := range list {
			if _, drop := ids[m.ID]; drop {
				removed++
				continue
			}
			kept = append(kept, m)
		}
		d.Materials[category] = kept
	}
	return removed
}

// TrackByID returns the track with the given id.
func (d *Document) TrackByID(id string) (*Track, bool) {
	for _, t := range d.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// RemoveTracks drops every track whose id is in ids.
func (d *Document) RemoveTracks(ids map[string]struct{}) int {
	kept := d.Tracks[:0]
	removed := 0
	for _, t := range d.Tracks {
		if _, drop := ids[t.ID]; drop {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	d.Tracks = kept
	return removed
}

// MaxSegmentEnd returns the latest target end over all segments.
func (d *Document) MaxSegmentEnd() int64 {
	var end int64
	for _, t := range d.Tracks {
		end = max(end, t.EndUS())
	}
	return end
}

// FitDuration grows DurationUS to cover every segment. It reports whether
// the duration changed.
func (d *Document) FitDuration() bool {
	if end := d.MaxSegmentEnd(); end > d.DurationUS {
		d.DurationUS = end
		return true
	}
	return false
}

// SegmentCount returns the number of segments across all tracks.
func (d *Document) SegmentCount() int {
	n := 0
	for _, t := range d.Tracks {
		n += len(t.Segments)
	}
	return n
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		DurationUS:   d.DurationUS,
		raw:          cloneBytes(d.raw),
		tracksRaw:    d.tracksRaw,
		materialsRaw: cloneBytes(d.materialsRaw),
	}
	out.copyTimeline(d)
	return out
}

// CopyTimelineFrom replaces tracks, materials, and duration with deep copies
// of src's. Every other top-level field of d is left as it was.
func (d *Document) CopyTimelineFrom(src *Document) {
	d.DurationUS = src.DurationUS
	d.tracksRaw = src.tracksRaw
	d.materialsRaw = cloneBytes(src.materialsRaw)
	d.copyTimeline(src)
}

func (d *Document) copyTimeline(src *Document) {
	d.categories = append([]string(nil), src.categories...)
	d.Tracks = make([]*Track, len(src.Tracks))
	for i, t := range src.Tracks {
		d.Tracks[i] = t.Clone()
	}
	d.Materials = make(map[string][]*Material, len(src.Materials))
	for category, list := range src.Materials {
		cp := make([]*Material, len(list))
		for i, m := range list {
			cp[i] = m.Clone()
		}
		d.Materials[category] = cp
	}
}
