package timeline

import (
	"github.com/tidwall/gjson"
)

// Kind is the lane type of a track.
type Kind string

const (
	KindVideo      Kind = "video"
	KindAudio      Kind = "audio"
	KindText       Kind = "text"
	KindEffect     Kind = "effect"
	KindTransition Kind = "transition"
)

var kindCategories = map[Kind][]string{
	KindVideo:      {CategoryVideos},
	KindAudio:      {CategoryAudios},
	KindText:       {CategoryTexts},
	KindEffect:     {CategoryVideoEffects, CategoryEffects},
	KindTransition: {CategoryTransitions},
}

// ParseKind validates a track type string.
func ParseKind(value string) (Kind, bool) {
	k := Kind(value)
	_, ok := kindCategories[k]
	return k, ok
}

// Categories returns the material categories a segment on a track of this
// kind may reference through material_id.
func (k Kind) Categories() []string {
	return kindCategories[k]
}

// Track is an ordered lane of segments of one kind.
type Track struct {
	ID       string
	Kind     Kind
	Name     string
	Segments []*Segment

	raw         []byte
	segmentsRaw string
}

func parseTrack(r gjson.Result, idx int) (*Track, error) {
	if !r.IsObject() {
		return nil, parseError("track %d is not an object", idx)
	}
	id := r.Get("id")
	if id.Type != gjson.String || id.Str == "" {
		return nil, parseError("track %d has no id", idx)
	}
	kind, ok := ParseKind(r.Get("type").String())
	if !ok {
		return nil, parseError("track %s has unsupported type %q", id.Str, r.Get("type").String())
	}
	track := &Track{
		ID:   id.Str,
		Kind: kind,
		Name: r.Get("name").String(),
		raw:  []byte(r.Raw),
	}
	segments := r.Get("segments")
	if segments.Exists() && segments.Type != gjson.Null {
		if !segments.IsArray() {
			return nil, parseError("track %s segments is not an array", id.Str)
		}
		track.segmentsRaw = segments.Raw
		for i, item := range segments.Array() {
			seg, err := parseSegment(item, id.Str, i)
			if err != nil {
				return nil, err
			}
			track.Segments = append(track.Segments, seg)
		}
	}
	return track, nil
}

func (t *Track) encode() ([]byte, error) {
	raw := cloneBytes(t.raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var err error
	if raw, err = setString(raw, "id", t.ID); err != nil {
		return nil, err
	}
	if raw, err = setString(raw, "type", string(t.Kind)); err != nil {
		return nil, err
	}
	if raw, err = setString(raw, "name", t.Name); err != nil {
		return nil, err
	}
	elems := make([][]byte, 0, len(t.Segments))
	for _, seg := range t.Segments {
		enc, err := seg.encode()
		if err != nil {
			return nil, err
		}
		elems = append(elems, enc)
	}
	return setRaw(raw, "segments", joinArray(t.segmentsRaw, elems))
}

// SegmentByID returns the segment with the given id.
func (t *Track) SegmentByID(id string) (*Segment, bool) {
	for _, seg := range t.Segments {
		if seg.ID == id {
			return seg, true
		}
	}
	return nil, false
}

// EndUS returns the latest segment end on the track.
func (t *Track) EndUS() int64 {
	var end int64
	for _, seg := range t.Segments {
		end = max(end, seg.Target.EndUS())
	}
	return end
}

// Clone returns a deep copy of the track.
func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}
	out := &Track{
		ID:          t.ID,
		Kind:        t.Kind,
		Name:        t.Name,
		raw:         cloneBytes(t.raw),
		segmentsRaw: t.segmentsRaw,
	}
	if t.Segments != nil {
		out.Segments = make([]*Segment, len(t.Segments))
		for i, seg := range t.Segments {
			out.Segments[i] = seg.Clone()
		}
	}
	return out
}
