package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"draftkit/internal/timeline"
)

// Item is one entry from an external cue source.
type Item struct {
	Summary     string  `json:"summary,omitempty"`
	DurationSec float64 `json:"duration_sec"`
}

// Placement is an item's display window in frames.
type Placement struct {
	StartFrame    int `json:"start_frame"`
	DurationFrame int `json:"duration_frame"`
}

// EndFrame returns the exclusive end frame.
func (p Placement) EndFrame() int {
	return p.StartFrame + p.DurationFrame
}

// Schedule is the frame-accurate layout of a list of items.
type Schedule struct {
	FPS           float64     `json:"fps"`
	OverlapFrames int         `json:"overlap_frames"`
	TotalFrames   int         `json:"total_frames"`
	Placed        []Placement `json:"placed"`
}

// Compute lays items out back to back with crossfadeSec of overlap between
// neighbours.
func Compute(items []Item, fps, crossfadeSec float64) (Schedule, error) {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return Schedule{}, fmt.Errorf("schedule: fps must be positive, got %v", fps)
	}
	if crossfadeSec < 0 || math.IsNaN(crossfadeSec) {
		return Schedule{}, fmt.Errorf("schedule: crossfade must be >= 0, got %v", crossfadeSec)
	}

	overlap := int(math.Round(crossfadeSec * fps))
	out := Schedule{
		FPS:           fps,
		OverlapFrames: overlap,
		Placed:        make([]Placement, 0, len(items)),
	}
	cursor := 0
	for i, item := range items {
		display := max(1, int(math.Round(item.DurationSec*fps)))
		out.Placed = append(out.Placed, Placement{StartFrame: cursor, DurationFrame: display})
		if i == len(items)-1 {
			cursor += display
		} else {
			cursor += display - overlap
		}
	}
	out.TotalFrames = cursor
	return out, nil
}

// Cue is a placement converted back to seconds.
type Cue struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
}

// Cues converts every placement to a second range, suitable for retiming a
// track to the schedule.
func (s Schedule) Cues() []Cue {
	out := make([]Cue, 0, len(s.Placed))
	for _, p := range s.Placed {
		out = append(out, Cue{
			StartSec: float64(p.StartFrame) / s.FPS,
			EndSec:   float64(p.EndFrame()) / s.FPS,
		})
	}
	return out
}

// LoadItems decodes a JSON array of {summary, duration_sec} records.
func LoadItems(r io.Reader) ([]Item, error) {
	var items []Item
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode schedule items: %w", err)
	}
	for i, item := range items {
		if item.DurationSec <= 0 {
			return nil, fmt.Errorf("schedule item %d: duration_sec must be positive", i)
		}
	}
	return items, nil
}

// Caption is a caption window in frames.
type Caption struct {
	StartFrame int    `json:"start_frame"`
	EndFrame   int    `json:"end_frame"`
	Text       string `json:"text"`
}

// AlignCaptions derives one caption window per placement. Each shared
// overlap is split between its two neighbours (the earlier item keeps the
// first half), the first start and last end are left untouched, and windows
// are clamped so that start >= previous end and end > start.
func AlignCaptions(s Schedule, texts []string) ([]Caption, error) {
	if len(texts) != len(s.Placed) {
		return nil, timeline.Wrap(timeline.ErrCountMismatch, "schedule", "align captions",
			fmt.Sprintf("%d captions for %d items", len(texts), len(s.Placed)), nil)
	}
	if len(texts) == 0 {
		return nil, nil
	}
	headTrim := s.OverlapFrames / 2
	tailTrim := s.OverlapFrames - headTrim
	last := len(s.Placed) - 1

	out := make([]Caption, 0, len(s.Placed))
	prevEnd := 0
	for i, p := range s.Placed {
		start := p.StartFrame
		end := p.EndFrame()
		if i > 0 {
			start += headTrim
		}
		if i < last {
			end -= tailTrim
		}
		if i > 0 && start < prevEnd {
			start = prevEnd
		}
		if end <= start {
			end = start + 1
		}
		out = append(out, Caption{StartFrame: start, EndFrame: end, Text: texts[i]})
		prevEnd = end
	}
	return out, nil
}

// Summaries returns each item's summary, used as caption text.
func Summaries(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Summary
	}
	return out
}

var errNoItems = errors.New("schedule: no items")

// Build loads items from r and computes both the layout and captions.
func Build(r io.Reader, fps, crossfadeSec float64) (Schedule, []Caption, error) {
	items, err := LoadItems(r)
	if err != nil {
		return Schedule{}, nil, err
	}
	if len(items) == 0 {
		return Schedule{}, nil, errNoItems
	}
	sched, err := Compute(items, fps, crossfadeSec)
	if err != nil {
		return Schedule{}, nil, err
	}
	captions, err := AlignCaptions(sched, Summaries(items))
	if err != nil {
		return Schedule{}, nil, err
	}
	return sched, captions, nil
}
