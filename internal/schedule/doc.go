// Package schedule lays out a sequence of timed visual items on a frame grid
// with crossfade overlap, and derives non-overlapping caption windows from
// that layout.
//
// Compute is a pure function: each item is shown for round(duration*fps)
// frames (at least one) and starts where the previous item's display window
// minus the crossfade overlap ends, so neighbours share exactly
// OverlapFrames frames. AlignCaptions splits every shared window between the
// two neighbours and clamps the result so captions never overlap or run
// backwards, even for items shorter than the overlap.
package schedule
