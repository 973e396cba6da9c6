package edit

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"draftkit/internal/schedule"
	"draftkit/internal/timeline"
)

// Cue is a target window in seconds.
type Cue = schedule.Cue

// RetimeResult reports what Retime changed.
type RetimeResult struct {
	TrackID         string `json:"track_id"`
	SegmentsRetimed int    `json:"segments_retimed"`
	SpeedsChanged   int    `json:"speeds_changed"`
}

// Retime moves every segment of track to the matching cue. Cues are checked
// before any segment changes, so a rejected cue list leaves the track as it
// was. When doc is non-nil, speeds materials referenced by a retimed segment
// get the new speed too.
func Retime(doc *timeline.Document, track *timeline.Track, cues []Cue) (RetimeResult, error) {
	result := RetimeResult{TrackID: track.ID}
	if len(cues) != len(track.Segments) {
		return result, timeline.Wrap(timeline.ErrCountMismatch, "edit", "retime",
			fmt.Sprintf("track %s has %d segments, got %d cues", track.ID, len(track.Segments), len(cues)), nil)
	}

	ranges := make([]timeline.TimeRange, len(cues))
	for i, cue := range cues {
		r, err := cueRange(cue)
		if err != nil {
			return result, timeline.Wrap(timeline.ErrInvalidCue, "edit", "retime",
				fmt.Sprintf("cue %d for segment %s", i, track.Segments[i].ID), err)
		}
		ranges[i] = r
	}

	for i, seg := range track.Segments {
		r := ranges[i]
		seg.Target = r
		if seg.Render != nil {
			rr := r
			seg.Render = &rr
		}
		result.SegmentsRetimed++
		if seg.Source == nil || seg.Source.DurationUS <= 0 {
			continue
		}
		speed := float64(seg.Source.DurationUS) / float64(r.DurationUS)
		if speed != seg.Speed {
			result.SpeedsChanged++
		}
		seg.Speed = speed
		if doc != nil {
			if err := syncSpeedMaterials(doc, seg); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

func syncSpeedMaterials(doc *timeline.Document, seg *timeline.Segment) error {
	speeds := doc.MaterialIDs(timeline.CategorySpeeds)
	for _, ref := range seg.ExtraRefs {
		if _, ok := speeds[ref]; !ok {
			continue
		}
		m, _ := doc.MaterialByID(ref)
		if err := m.SetNumber("speed", seg.Speed); err != nil {
			return fmt.Errorf("update speed material %s: %w", ref, err)
		}
	}
	return nil
}

func cueRange(cue Cue) (timeline.TimeRange, error) {
	if math.IsNaN(cue.StartSec) || math.IsNaN(cue.EndSec) || math.IsInf(cue.StartSec, 0) || math.IsInf(cue.EndSec, 0) {
		return timeline.TimeRange{}, fmt.Errorf("non-finite cue %v-%v", cue.StartSec, cue.EndSec)
	}
	if cue.StartSec < 0 {
		return timeline.TimeRange{}, fmt.Errorf("negative start %v", cue.StartSec)
	}
	start := MillisecondAlign(SecondsToUS(cue.StartSec))
	end := MillisecondAlign(SecondsToUS(cue.EndSec))
	if end <= start {
		return timeline.TimeRange{}, fmt.Errorf("end %v is not after start %v", cue.EndSec, cue.StartSec)
	}
	return timeline.TimeRange{StartUS: start, DurationUS: end - start}, nil
}

// SecondsToUS converts seconds to microseconds, rounding to the nearest unit.
func SecondsToUS(sec float64) int64 {
	return int64(math.Round(sec * 1_000_000))
}

// MillisecondAlign floors a non-negative microsecond value to a whole
// millisecond.
func MillisecondAlign(us int64) int64 {
	return us / 1000 * 1000
}

// LoadCues decodes a JSON array of {start_sec, end_sec} records.
func LoadCues(r io.Reader) ([]Cue, error) {
	var cues []Cue
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cues); err != nil {
		return nil, fmt.Errorf("decode cues: %w", err)
	}
	return cues, nil
}
