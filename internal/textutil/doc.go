// Package textutil holds small string helpers shared by the edit operations
// and the CLI: filename sanitizing for stored assets, Unicode-normalized
// comparison keys for track names, and trigram fingerprints used to suggest
// the closest track name when a lookup misses.
package textutil
