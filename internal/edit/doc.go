// Package edit implements the in-memory mutations applied to a timeline
// document: retiming a track to external cues, hot-swapping an asset under a
// fresh material id, rebuilding crossfade transitions or fade animations,
// removing duplicated automation tracks, and normalizing track names across
// the canonical/mirror pair.
//
// Operations mutate the document they are given and leave persistence,
// validation, and rollback to the caller.
package edit
