package project

import (
	"context"
	"sort"

	"draftkit/internal/integrity"
	"draftkit/internal/refindex"
	"draftkit/internal/timeline"
)

// TrackSummary is one line of a report.
type TrackSummary struct {
	ID       string        `json:"id"`
	Kind     timeline.Kind `json:"kind"`
	Name     string        `json:"name"`
	Segments int           `json:"segments"`
	EndUS    int64         `json:"end_us"`
}

// Report describes the state of a project pair.
type Report struct {
	Project       string           `json:"project"`
	DurationUS    int64            `json:"duration_us"`
	Tracks        []TrackSummary   `json:"tracks"`
	Materials     map[string]int   `json:"materials"`
	DeadMaterials []string         `json:"dead_materials,omitempty"`
	Issues        integrity.Issues `json:"issues,omitempty"`
	MirrorInSync  bool             `json:"mirror_in_sync"`
}

// OK reports whether the pair passed every check.
func (r Report) OK() bool {
	return len(r.Issues) == 0
}

// Inspect validates the pair on disk under a shared lock. It never writes.
func (p *Project) Inspect(ctx context.Context) (Report, error) {
	report := Report{Project: p.Name, Materials: make(map[string]int)}

	unlock, err := p.lock(ctx, true)
	if err != nil {
		return report, err
	}
	defer unlock()

	pair, err := p.Load()
	if err != nil {
		return report, err
	}
	content := pair.Content
	report.DurationUS = content.DurationUS
	for _, t := range content.Tracks {
		report.Tracks = append(report.Tracks, TrackSummary{
			ID:       t.ID,
			Kind:     t.Kind,
			Name:     t.Name,
			Segments: len(t.Segments),
			EndUS:    t.EndUS(),
		})
	}
	for _, category := range content.Categories() {
		report.Materials[category] = len(content.Materials[category])
	}
	for id := range refindex.DeadMaterials(content) {
		report.DeadMaterials = append(report.DeadMaterials, id)
	}
	sort.Strings(report.DeadMaterials)

	report.Issues = integrity.Issues(content.Validate())
	pairIssues := integrity.CheckPair(content, pair.Info)
	report.MirrorInSync = len(pairIssues) == 0 && content.DurationUS == pair.Info.DurationUS
	report.Issues = append(report.Issues, pairIssues...)
	return report, nil
}
