// Package refindex tracks which identifiers a draft already uses and mints
// new ones that match the surrounding convention.
package refindex

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"draftkit/internal/timeline"
)

// Scope selects which family of ids a new identifier will live among.
type Scope int

const (
	ScopeTracks Scope = iota
	ScopeSegments
	ScopeMaterials
)

// Convention is an id spelling observed in a draft.
type Convention string

const (
	// ConventionUpperHex is 32 upper-case hex digits without dashes.
	ConventionUpperHex Convention = "upper-hex"
	// ConventionUUID is a lower-case dashed UUID.
	ConventionUUID Convention = "uuid"
	// ConventionUpperUUID is an upper-case dashed UUID.
	ConventionUpperUUID Convention = "upper-uuid"
)

const maxMintAttempts = 8

var conventionPatterns = []struct {
	convention Convention
	pattern    *regexp.Regexp
}{
	{ConventionUpperHex, regexp.MustCompile(`^[0-9A-F]{32}$`)},
	{ConventionUUID, regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)},
	{ConventionUpperUUID, regexp.MustCompile(`^[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}$`)},
}

// Index is the id set of one document plus every id minted through it.
type Index struct {
	doc     *timeline.Document
	ids     map[string]struct{}
	byScope map[Scope][]string
	all     []string
	source  func() string
}

// Option customizes an Index.
type Option func(*Index)

// WithSource replaces the random UUID source. The function must return a
// dashed UUID string; it is reformatted to the detected convention.
func WithSource(fn func() string) Option {
	return func(x *Index) {
		if fn != nil {
			x.source = fn
		}
	}
}

// New snapshots the ids currently used by doc.
func New(doc *timeline.Document, opts ...Option) *Index {
	x := &Index{
		doc:     doc,
		ids:     make(map[string]struct{}),
		byScope: make(map[Scope][]string),
		source:  uuid.NewString,
	}
	for _, t := range doc.Tracks {
		x.record(ScopeTracks, t.ID)
		for _, seg := range t.Segments {
			x.record(ScopeSegments, seg.ID)
		}
	}
	for _, category := range doc.Categories() {
		for _, m := range doc.Materials[category] {
			x.record(ScopeMaterials, m.ID)
		}
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Index) record(scope Scope, id string) {
	if id == "" {
		return
	}
	x.byScope[scope] = append(x.byScope[scope], id)
	x.all = append(x.all, id)
	x.ids[id] = struct{}{}
}

// Contains reports whether id is already in use.
func (x *Index) Contains(id string) bool {
	_, ok := x.ids[id]
	return ok
}

// Convention returns the spelling used by the ids in scope. When scope has
// no recognizable ids the whole document is sampled; a document with none
// falls back to upper-case dashed UUIDs, the editor's own default.
func (x *Index) Convention(scope Scope) Convention {
	if c, ok := detect(x.byScope[scope]); ok {
		return c
	}
	if c, ok := detect(x.all); ok {
		return c
	}
	return ConventionUpperUUID
}

func detect(ids []string) (Convention, bool) {
	counts := make(map[Convention]int, len(conventionPatterns))
	best, bestCount := Convention(""), 0
	for _, id := range ids {
		for _, cp := range conventionPatterns {
			if cp.pattern.MatchString(id) {
				counts[cp.convention]++
				if counts[cp.convention] > bestCount {
					best, bestCount = cp.convention, counts[cp.convention]
				}
				break
			}
		}
	}
	return best, bestCount > 0
}

// NewID mints an identifier absent from the document and from every id
// minted earlier through this index. A colliding candidate is retried; after
// a bounded number of attempts ErrConflict is returned.
func (x *Index) NewID(scope Scope) (string, error) {
	convention := x.Convention(scope)
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		candidate := format(x.source(), convention)
		if _, taken := x.ids[candidate]; taken {
			continue
		}
		x.ids[candidate] = struct{}{}
		x.byScope[scope] = append(x.byScope[scope], candidate)
		x.all = append(x.all, candidate)
		return candidate, nil
	}
	return "", timeline.Wrap(timeline.ErrConflict, "refindex", "mint id",
		fmt.Sprintf("no free id after %d attempts", maxMintAttempts), nil)
}

func format(raw string, convention Convention) string {
	switch convention {
	case ConventionUpperHex:
		return strings.ToUpper(strings.ReplaceAll(raw, "-", ""))
	case ConventionUUID:
		return strings.ToLower(raw)
	default:
		return strings.ToUpper(raw)
	}
}

// IsLive reports whether any segment references id through material_id or
// extra_material_refs. It reads the document as it is now, not as it was
// when the index was built.
func (x *Index) IsLive(id string) bool {
	_, ok := LiveMaterials(x.doc)[id]
	return ok
}

// LiveMaterials returns every material id referenced by a segment.
func LiveMaterials(doc *timeline.Document) map[string]struct{} {
	live := make(map[string]struct{})
	for _, t := range doc.Tracks {
		for _, seg := range t.Segments {
			for _, ref := range seg.References() {
				live[ref] = struct{}{}
			}
		}
	}
	return live
}

// DeadMaterials returns ids of materials no segment references, keyed by id
// with the category as value.
func DeadMaterials(doc *timeline.Document) map[string]string {
	live := LiveMaterials(doc)
	dead := make(map[string]string)
	for _, category := range doc.Categories() {
		for _, m := range doc.Materials[category] {
			if _, ok := live[m.ID]; !ok {
				dead[m.ID] = category
			}
		}
	}
	return dead
}
