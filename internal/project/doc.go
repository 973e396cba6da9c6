// Package project applies edit operations to a project directory on disk.
//
// A project holds a content document and an info document that must stay
// mirrors of each other. Every mutation runs under an advisory lock on the
// project, edits the content document in memory, rebuilds the info document
// from it, and only writes when both pass the integrity checks. Both files
// are backed up before they are replaced and restored if the rewritten pair
// does not read back cleanly. Each run is recorded in the journal.
package project
