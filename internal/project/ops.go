package project

import (
	"context"
	"errors"
	"fmt"
	"os"

	"draftkit/internal/edit"
	"draftkit/internal/integrity"
	"draftkit/internal/logging"
	"draftkit/internal/textutil"
	"draftkit/internal/timeline"
)

// suggestThreshold is the similarity a track name needs to be offered as a
// correction.
const suggestThreshold = 0.4

// Operation names recorded in the journal.
const (
	OpNormalize = "normalize"
	OpDedupe    = "dedupe"
	OpCrossfade = "crossfade"
	OpFade      = "fade"
	OpRetime    = "retime"
	OpSwap      = "swap"
	OpSync      = "sync"
)

// TrackResult pairs a track with what an injection did to it.
type TrackResult struct {
	TrackID string `json:"track_id"`
	edit.InjectResult
}

// Normalize gives every track a unique non-empty name.
func Normalize() Mutation {
	return Mutation{
		Operation: OpNormalize,
		Apply: func(_ context.Context, pair *Pair) (any, error) {
			return edit.NormalizeNames(pair.Content, pair.Info), nil
		},
	}
}

// Dedupe collapses duplicated automation tracks.
func Dedupe(prefix string, templates []string) Mutation {
	return Mutation{
		Operation: OpDedupe,
		Expect:    integrity.Expect{SegmentCountsMayChange: true},
		Apply: func(_ context.Context, pair *Pair) (any, error) {
			return edit.DedupeTracks(pair.Content, edit.AutomationPredicate(prefix, templates)), nil
		},
	}
}

// Crossfade rebuilds crossfades on the selected track, or on every video
// track with segments when selector is empty.
func Crossfade(selector string, spec edit.TransitionSpec) Mutation {
	return Mutation{
		Operation: OpCrossfade,
		Apply: func(_ context.Context, pair *Pair) (any, error) {
			tracks, err := selectTracks(pair.Content, selector, timeline.KindVideo)
			if err != nil {
				return nil, err
			}
			results := make([]TrackResult, 0, len(tracks))
			for _, t := range tracks {
				res, err := edit.InjectCrossfades(pair.Content, t, spec)
				if err != nil {
					return results, fmt.Errorf("track %s: %w", t.ID, err)
				}
				results = append(results, TrackResult{TrackID: t.ID, InjectResult: res})
			}
			return results, nil
		},
	}
}

// Fade adds fade-in/fade-out animations on the selected track, or on every
// video track with segments when selector is empty.
func Fade(selector string, spec edit.FadeSpec) Mutation {
	return Mutation{
		Operation: OpFade,
		Apply: func(_ context.Context, pair *Pair) (any, error) {
			tracks, err := selectTracks(pair.Content, selector, timeline.KindVideo)
			if err != nil {
				return nil, err
			}
			results := make([]TrackResult, 0, len(tracks))
			for _, t := range tracks {
				res, err := edit.InjectFades(pair.Content, t, spec)
				if err != nil {
					return results, fmt.Errorf("track %s: %w", t.ID, err)
				}
				results = append(results, TrackResult{TrackID: t.ID, InjectResult: res})
			}
			return results, nil
		},
	}
}

// Retime moves the selected track's segments onto cues.
func Retime(selector string, cues []edit.Cue) Mutation {
	return Mutation{
		Operation: OpRetime,
		Apply: func(_ context.Context, pair *Pair) (any, error) {
			track, err := resolveTrack(pair.Content, selector)
			if err != nil {
				return nil, err
			}
			return edit.Retime(pair.Content, track, cues)
		},
	}
}

// Swap replaces the asset behind materialID. The copied asset is removed
// again when the edit is not written.
func Swap(swapper edit.Swapper, materialID, assetPath string, dryRun bool) Mutation {
	var stored string
	return Mutation{
		Operation: OpSwap,
		DryRun:    dryRun,
		Apply: func(ctx context.Context, pair *Pair) (any, error) {
			res, err := swapper.Swap(ctx, pair.Content, materialID, assetPath, dryRun)
			stored = res.StoredPath
			return res, err
		},
		Abort: func() {
			if stored != "" {
				if err := os.Remove(stored); err != nil && !errors.Is(err, os.ErrNotExist) {
					logging.NewComponentLogger(swapper.Logger, "swap").Warn("remove unused stored asset failed",
						logging.String("path", stored),
						logging.Error(err),
					)
				}
			}
		},
	}
}

// Sync rebuilds the info document from the content document.
func Sync() Mutation {
	return Mutation{
		Operation: OpSync,
		Apply: func(context.Context, *Pair) (any, error) {
			return nil, nil
		},
	}
}

// resolveTrack selects one track and, when nothing matches, suggests the
// closest track name.
func resolveTrack(doc *timeline.Document, selector string) (*timeline.Track, error) {
	track, err := doc.SelectTrack(selector)
	if err == nil {
		return track, nil
	}
	candidates := make([]string, 0, len(doc.Tracks))
	for _, t := range doc.Tracks {
		if t.Name != "" {
			candidates = append(candidates, t.Name)
		}
	}
	if guess, ok := textutil.Closest(selector, candidates, suggestThreshold); ok {
		return nil, fmt.Errorf("%w (did you mean %q?)", err, guess)
	}
	return nil, err
}

func selectTracks(doc *timeline.Document, selector string, kind timeline.Kind) ([]*timeline.Track, error) {
	if selector != "" {
		track, err := resolveTrack(doc, selector)
		if err != nil {
			return nil, err
		}
		return []*timeline.Track{track}, nil
	}
	var tracks []*timeline.Track
	for _, t := range doc.Tracks {
		if t.Kind == kind && len(t.Segments) > 0 {
			tracks = append(tracks, t)
		}
	}
	if len(tracks) == 0 {
		return nil, timeline.Wrap(timeline.ErrNotFound, "project", "select tracks",
			fmt.Sprintf("no %s track with segments", kind), nil)
	}
	return tracks, nil
}
