package timeline

import (
	"fmt"
	"slices"
)

// IssueCode classifies an integrity violation.
type IssueCode string

const (
	IssueUnresolvedMaterial IssueCode = "unresolved_material"
	IssueCategoryMismatch   IssueCode = "category_mismatch"
	IssueUnresolvedExtraRef IssueCode = "unresolved_extra_ref"
	IssueDurationShort      IssueCode = "duration_short"
	IssueLivePruned         IssueCode = "live_material_pruned"
	IssueSegmentCount       IssueCode = "segment_count_changed"
	IssueMirrorTracks       IssueCode = "mirror_track_mismatch"
)

// Issue describes one violated invariant.
type Issue struct {
	Code       IssueCode `json:"code"`
	TrackID    string    `json:"track_id,omitempty"`
	SegmentID  string    `json:"segment_id,omitempty"`
	MaterialID string    `json:"material_id,omitempty"`
	Message    string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// IsReference reports whether the issue is a dangling or mistyped reference.
func (i Issue) IsReference() bool {
	switch i.Code {
	case IssueUnresolvedMaterial, IssueCategoryMismatch, IssueUnresolvedExtraRef, IssueLivePruned:
		return true
	}
	return false
}

// Validate checks that every segment material resolves to a material of a
// category its track kind allows, that every extra ref resolves, and that the
// document duration covers every segment.
func (d *Document) Validate() []Issue {
	byID := make(map[string]*Material)
	for _, category := range d.categories {
		for _, m := range d.Materials[category] {
			byID[m.ID] = m
		}
	}

	var issues []Issue
	for _, t := range d.Tracks {
		allowed := t.Kind.Categories()
		for _, seg := range t.Segments {
			m, ok := byID[seg.MaterialID]
			switch {
			case !ok:
				issues = append(issues, Issue{
					Code:       IssueUnresolvedMaterial,
					TrackID:    t.ID,
					SegmentID:  seg.ID,
					MaterialID: seg.MaterialID,
					Message:    fmt.Sprintf("segment %s references missing material %s", seg.ID, seg.MaterialID),
				})
			case !slices.Contains(allowed, m.Category):
				issues = append(issues, Issue{
					Code:       IssueCategoryMismatch,
					TrackID:    t.ID,
					SegmentID:  seg.ID,
					MaterialID: seg.MaterialID,
					Message:    fmt.Sprintf("%s track segment %s references %s material %s", t.Kind, seg.ID, m.Category, m.ID),
				})
			}
			for _, ref := range seg.ExtraRefs {
				if _, ok := byID[ref]; !ok {
					issues = append(issues, Issue{
						Code:       IssueUnresolvedExtraRef,
						TrackID:    t.ID,
						SegmentID:  seg.ID,
						MaterialID: ref,
						Message:    fmt.Sprintf("segment %s extra ref %s does not resolve", seg.ID, ref),
					})
				}
			}
		}
	}

	if end := d.MaxSegmentEnd(); d.DurationUS < end {
		issues = append(issues, Issue{
			Code:    IssueDurationShort,
			Message: fmt.Sprintf("document duration %d is shorter than last segment end %d", d.DurationUS, end),
		})
	}
	return issues
}
