package timeline

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Material categories understood by the edit operations.
const (
	CategoryVideos       = "videos"
	CategoryAudios       = "audios"
	CategoryTexts        = "texts"
	CategoryTransitions  = "transitions"
	CategoryAnimations   = "material_animations"
	CategorySpeeds       = "speeds"
	CategoryVideoEffects = "video_effects"
	CategoryEffects      = "effects"
)

// MaterialKind tags the payload carried by a Material.
type MaterialKind int

const (
	MaterialOpaque MaterialKind = iota
	MaterialVisual
	MaterialAudio
	MaterialTransition
	MaterialAnimation
)

// Visual is an image or video asset.
type Visual struct {
	Path   string
	Width  int
	Height int
}

// AudioClip is an audio asset.
type AudioClip struct {
	Path       string
	DurationUS int64
}

// Transition joins a segment to its predecessor.
type Transition struct {
	Name       string
	EffectID   string
	ResourceID string
	DurationUS int64
	IsOverlap  bool
}

// AnimationEntry is one intro/outro animation applied to a segment.
type AnimationEntry struct {
	StartUS    int64
	DurationUS int64
	Name       string
	ResourceID string
	Type       string

	raw []byte
}

// Animation groups the animation entries attached to one segment.
type Animation struct {
	Entries []AnimationEntry

	entriesRaw string
}

// Material is a reusable asset or effect definition referenced by id.
type Material struct {
	ID       string
	Category string
	Kind     MaterialKind

	visual     *Visual
	audio      *AudioClip
	transition *Transition
	animation  *Animation

	raw []byte
}

// AsVisual returns the visual payload when the material is a visual asset.
func (m *Material) AsVisual() (*Visual, bool) {
	return m.visual, m.visual != nil
}

// AsAudio returns the audio payload when the material is an audio clip.
func (m *Material) AsAudio() (*AudioClip, bool) {
	return m.audio, m.audio != nil
}

// AsTransition returns the transition payload.
func (m *Material) AsTransition() (*Transition, bool) {
	return m.transition, m.transition != nil
}

// AsAnimation returns the animation payload.
func (m *Material) AsAnimation() (*Animation, bool) {
	return m.animation, m.animation != nil
}

// NewTransitionMaterial builds a transition material ready to be added to
// the transitions category.
func NewTransitionMaterial(id string, t Transition) *Material {
	raw, _ := sjson.SetBytes([]byte("{}"), "id", id)
	raw, _ = sjson.SetBytes(raw, "type", "transition")
	tt := t
	return &Material{ID: id, Category: CategoryTransitions, Kind: MaterialTransition, transition: &tt, raw: raw}
}

// NewAnimationMaterial builds an animation material for the
// material_animations category.
func NewAnimationMaterial(id string, entries []AnimationEntry) *Material {
	raw, _ := sjson.SetBytes([]byte("{}"), "id", id)
	raw, _ = sjson.SetBytes(raw, "type", "sticker_animation")
	anim := &Animation{Entries: append([]AnimationEntry(nil), entries...)}
	return &Material{ID: id, Category: CategoryAnimations, Kind: MaterialAnimation, animation: anim, raw: raw}
}

// WithID returns a deep copy of m carrying a new id. Opaque fields are kept.
func (m *Material) WithID(id string) *Material {
	out := m.Clone()
	out.ID = id
	return out
}

func parseMaterial(category string, r gjson.Result, idx int) (*Material, error) {
	if !r.IsObject() {
		return nil, parseError("materials.%s[%d] is not an object", category, idx)
	}
	id := r.Get("id")
	if id.Type != gjson.String || id.Str == "" {
		return nil, parseError("materials.%s[%d] has no id", category, idx)
	}
	m := &Material{ID: id.Str, Category: category, raw: []byte(r.Raw)}
	switch category {
	case CategoryVideos:
		m.Kind = MaterialVisual
		m.visual = &Visual{
			Path:   r.Get("path").String(),
			Width:  int(r.Get("width").Int()),
			Height: int(r.Get("height").Int()),
		}
	case CategoryAudios:
		m.Kind = MaterialAudio
		m.audio = &AudioClip{
			Path:       r.Get("path").String(),
			DurationUS: r.Get("duration").Int(),
		}
	case CategoryTransitions:
		m.Kind = MaterialTransition
		m.transition = &Transition{
			Name:       r.Get("name").String(),
			EffectID:   r.Get("effect_id").String(),
			ResourceID: r.Get("resource_id").String(),
			DurationUS: r.Get("duration").Int(),
			IsOverlap:  r.Get("is_overlap").Bool(),
		}
	case CategoryAnimations:
		m.Kind = MaterialAnimation
		anim := &Animation{}
		entries := r.Get("animations")
		if entries.Exists() && entries.Type != gjson.Null {
			if !entries.IsArray() {
				return nil, parseError("material %s animations is not an array", id.Str)
			}
			anim.entriesRaw = entries.Raw
			for _, e := range entries.Array() {
				anim.Entries = append(anim.Entries, AnimationEntry{
					StartUS:    e.Get("start").Int(),
					DurationUS: e.Get("duration").Int(),
					Name:       e.Get("name").String(),
					ResourceID: e.Get("resource_id").String(),
					Type:       e.Get("type").String(),
					raw:        []byte(e.Raw),
				})
			}
		}
		m.animation = anim
	default:
		m.Kind = MaterialOpaque
	}
	return m, nil
}

func (m *Material) encode() ([]byte, error) {
	raw := cloneBytes(m.raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var err error
	if raw, err = setString(raw, "id", m.ID); err != nil {
		return nil, err
	}
	switch {
	case m.visual != nil:
		if raw, err = setString(raw, "path", m.visual.Path); err != nil {
			return nil, err
		}
		if raw, err = setInt(raw, "width", int64(m.visual.Width)); err != nil {
			return nil, err
		}
		if raw, err = setInt(raw, "height", int64(m.visual.Height)); err != nil {
			return nil, err
		}
	case m.audio != nil:
		if raw, err = setString(raw, "path", m.audio.Path); err != nil {
			return nil, err
		}
		if raw, err = setInt(raw, "duration", m.audio.DurationUS); err != nil {
			return nil, err
		}
	case m.transition != nil:
		t := m.transition
		if t.Name != "" || has(raw, "name") {
			if raw, err = setString(raw, "name", t.Name); err != nil {
				return nil, err
			}
		}
		if raw, err = setString(raw, "effect_id", t.EffectID); err != nil {
			return nil, err
		}
		if raw, err = setString(raw, "resource_id", t.ResourceID); err != nil {
			return nil, err
		}
		if raw, err = setInt(raw, "duration", t.DurationUS); err != nil {
			return nil, err
		}
		if raw, err = setBool(raw, "is_overlap", t.IsOverlap); err != nil {
			return nil, err
		}
	case m.animation != nil:
		elems := make([][]byte, 0, len(m.animation.Entries))
		for _, e := range m.animation.Entries {
			enc, err := e.encode()
			if err != nil {
				return nil, err
			}
			elems = append(elems, enc)
		}
		if raw, err = setRaw(raw, "animations", joinArray(m.animation.entriesRaw, elems)); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func (e AnimationEntry) encode() ([]byte, error) {
	raw := cloneBytes(e.raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var err error
	if raw, err = setInt(raw, "start", e.StartUS); err != nil {
		return nil, err
	}
	if raw, err = setInt(raw, "duration", e.DurationUS); err != nil {
		return nil, err
	}
	if raw, err = setString(raw, "name", e.Name); err != nil {
		return nil, err
	}
	if raw, err = setString(raw, "resource_id", e.ResourceID); err != nil {
		return nil, err
	}
	if e.Type != "" || has(raw, "type") {
		if raw, err = setString(raw, "type", e.Type); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// Clone returns a deep copy of the material.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	out := &Material{ID: m.ID, Category: m.Category, Kind: m.Kind, raw: cloneBytes(m.raw)}
	if m.visual != nil {
		v := *m.visual
		out.visual = &v
	}
	if m.audio != nil {
		a := *m.audio
		out.audio = &a
	}
	if m.transition != nil {
		t := *m.transition
		out.transition = &t
	}
	if m.animation != nil {
		anim := &Animation{entriesRaw: m.animation.entriesRaw}
		for _, e := range m.animation.Entries {
			e.raw = cloneBytes(e.raw)
			anim.Entries = append(anim.Entries, e)
		}
		out.animation = anim
	}
	return out
}

// SetField overwrites an opaque top-level field on the material. It is used
// for display fields such as material_name that carry no semantics here.
func (m *Material) SetField(key, value string) error {
	if !has(m.raw, escapePath(key)) {
		return nil
	}
	raw, err := setString(cloneBytes(m.raw), escapePath(key), value)
	if err != nil {
		return err
	}
	m.raw = raw
	return nil
}

// SetNumber overwrites an existing numeric top-level field, such as the
// speed value of a speeds material.
func (m *Material) SetNumber(key string, value float64) error {
	path := escapePath(key)
	if !has(m.raw, path) {
		return nil
	}
	raw, err := setFloat(cloneBytes(m.raw), path, value)
	if err != nil {
		return err
	}
	m.raw = raw
	return nil
}

// Number reads a numeric top-level field from the material's opaque body.
func (m *Material) Number(key string) (float64, bool) {
	r := gjson.GetBytes(m.raw, escapePath(key))
	if r.Type != gjson.Number {
		return 0, false
	}
	return r.Float(), true
}
