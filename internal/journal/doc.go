// Package journal records every mutation run in a SQLite database so that
// past edits, their outcome, and the backups they left behind can be
// listed later.
//
// The store uses modernc.org/sqlite (pure Go) in WAL mode with a busy
// timeout, and retries writes that still hit SQLITE_BUSY with exponential
// backoff. The schema is embedded and versioned; a database written by a
// different schema version is rejected rather than migrated.
package journal
