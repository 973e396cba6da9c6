package timeline

import (
	"errors"
	"slices"

	"github.com/tidwall/gjson"
)

// TimeRange is a window in microseconds.
type TimeRange struct {
	StartUS    int64
	DurationUS int64
}

// EndUS returns the exclusive end of the range.
func (r TimeRange) EndUS() int64 {
	return r.StartUS + r.DurationUS
}

// Segment is a placed instance of a material on a track.
type Segment struct {
	ID         string
	MaterialID string
	Target     TimeRange
	Render     *TimeRange
	Source     *TimeRange
	Speed      float64
	// ExtraRefs lists transition, animation, and speed material ids. Order is
	// significant to some readers and is preserved.
	ExtraRefs []string

	raw []byte
}

func parseSegment(r gjson.Result, trackID string, idx int) (*Segment, error) {
	if !r.IsObject() {
		return nil, parseError("track %s segment %d is not an object", trackID, idx)
	}
	id := r.Get("id")
	if id.Type != gjson.String || id.Str == "" {
		return nil, parseError("track %s segment %d has no id", trackID, idx)
	}
	materialID := r.Get("material_id")
	if materialID.Type != gjson.String || materialID.Str == "" {
		return nil, parseError("segment %s has no material_id", id.Str)
	}
	target, err := parseRange(r.Get("target_timerange"), true)
	if err != nil {
		return nil, parseError("segment %s target_timerange: %v", id.Str, err)
	}
	render, err := parseRange(r.Get("render_timerange"), false)
	if err != nil {
		return nil, parseError("segment %s render_timerange: %v", id.Str, err)
	}
	source, err := parseRange(r.Get("source_timerange"), false)
	if err != nil {
		return nil, parseError("segment %s source_timerange: %v", id.Str, err)
	}

	seg := &Segment{
		ID:         id.Str,
		MaterialID: materialID.Str,
		Target:     *target,
		Render:     render,
		Source:     source,
		Speed:      1.0,
		raw:        []byte(r.Raw),
	}
	if speed := r.Get("speed"); speed.Type == gjson.Number && speed.Num > 0 {
		seg.Speed = speed.Num
	}
	if refs := r.Get("extra_material_refs"); refs.Exists() && refs.Type != gjson.Null {
		if !refs.IsArray() {
			return nil, parseError("segment %s extra_material_refs is not an array", id.Str)
		}
		seg.ExtraRefs = stringArray(refs)
	}
	return seg, nil
}

func parseRange(r gjson.Result, required bool) (*TimeRange, error) {
	if !r.Exists() || r.Type == gjson.Null {
		if required {
			return nil, errors.New("missing")
		}
		return nil, nil
	}
	if !r.IsObject() {
		return nil, errors.New("not an object")
	}
	return &TimeRange{
		StartUS:    r.Get("start").Int(),
		DurationUS: r.Get("duration").Int(),
	}, nil
}

func (s *Segment) encode() ([]byte, error) {
	raw := cloneBytes(s.raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var err error
	if raw, err = setString(raw, "id", s.ID); err != nil {
		return nil, err
	}
	if raw, err = setString(raw, "material_id", s.MaterialID); err != nil {
		return nil, err
	}
	if raw, err = setRange(raw, "target_timerange", s.Target); err != nil {
		return nil, err
	}
	if s.Render != nil {
		if raw, err = setRange(raw, "render_timerange", *s.Render); err != nil {
			return nil, err
		}
	}
	if s.Source != nil {
		if raw, err = setRange(raw, "source_timerange", *s.Source); err != nil {
			return nil, err
		}
	}
	if s.Speed != 1.0 || has(raw, "speed") {
		if raw, err = setFloat(raw, "speed", s.Speed); err != nil {
			return nil, err
		}
	}
	if len(s.ExtraRefs) > 0 || has(raw, "extra_material_refs") {
		if raw, err = setStrings(raw, "extra_material_refs", s.ExtraRefs); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func setRange(raw []byte, path string, r TimeRange) ([]byte, error) {
	if cur := gjson.GetBytes(raw, path); !cur.IsObject() {
		var err error
		if raw, err = setRaw(raw, path, []byte("{}")); err != nil {
			return nil, err
		}
	}
	raw, err := setInt(raw, path+".start", r.StartUS)
	if err != nil {
		return nil, err
	}
	return setInt(raw, path+".duration", r.DurationUS)
}

// HasRef reports whether id appears in the segment's extra material refs.
func (s *Segment) HasRef(id string) bool {
	return slices.Contains(s.ExtraRefs, id)
}

// References returns the material id followed by every extra ref.
func (s *Segment) References() []string {
	out := make([]string, 0, 1+len(s.ExtraRefs))
	out = append(out, s.MaterialID)
	return append(out, s.ExtraRefs...)
}

// Clone returns a deep copy of the segment.
func (s *Segment) Clone() *Segment {
	if s == nil {
		return nil
	}
	out := *s
	if s.Render != nil {
		r := *s.Render
		out.Render = &r
	}
	if s.Source != nil {
		r := *s.Source
		out.Source = &r
	}
	out.ExtraRefs = slices.Clone(s.ExtraRefs)
	out.raw = cloneBytes(s.raw)
	return &out
}
