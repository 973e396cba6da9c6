// Package timeline models the project draft document shared by every edit
// operation.
//
// A draft is a pair of JSON files with the same schema: tracks of timed
// segments that reference materials by id. Parse turns one file into a
// Document of typed Tracks, Segments, and Materials; Serialize writes it back.
// Serialization is stable: fields this package does not model are carried
// through byte-for-byte in their original key order, fields that did not
// change are not rewritten, and Parse(d.Serialize()).Serialize() equals
// d.Serialize().
//
// # Key Types
//
// Document: tracks, materials keyed by category name, and total duration.
//
// Track: an ordered lane of segments of one Kind.
//
// Segment: a placed instance of a material with target, source, and render
// time ranges in microseconds.
//
// Material: tagged union over the categories the edit operations understand
// (videos, audios, transitions, material_animations); every other category
// is kept as an opaque entry with only an id.
//
// # Entry Points
//
// Parse / Document.Serialize: load and store a draft.
// Document.Validate: reference and duration invariants.
// Document.FindTrack / SelectTrack: locate tracks after automation renamed
// or duplicated them.
package timeline
