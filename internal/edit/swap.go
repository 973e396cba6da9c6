package edit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"draftkit/internal/fileutil"
	"draftkit/internal/logging"
	"draftkit/internal/media/ffprobe"
	"draftkit/internal/refindex"
	"draftkit/internal/textutil"
	"draftkit/internal/timeline"
)

// Prober reports dimensions and duration of a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Asset, error)
}

// Reference fields a swap rewrites.
const (
	FieldMaterialID = "material_id"
	FieldExtraRefs  = "extra_material_refs"
)

const maxStoreAttempts = 8

// Reference locates one use of a material id.
type Reference struct {
	TrackID   string `json:"track_id"`
	SegmentID string `json:"segment_id"`
	Field     string `json:"field"`
}

// SwapResult describes a completed or planned swap.
type SwapResult struct {
	OldID      string      `json:"old_id"`
	NewID      string      `json:"new_id,omitempty"`
	StoredPath string      `json:"stored_path,omitempty"`
	References []Reference `json:"references"`
	Rewritten  int         `json:"rewritten"`
	DryRun     bool        `json:"dry_run"`
}

// Swapper replaces a material's asset and identity.
type Swapper struct {
	// StoreDir receives copies of swapped-in assets.
	StoreDir string
	Prober   Prober
	Logger   *slog.Logger
}

// FindReferences lists every segment field that refers to id, in track and
// segment order.
func FindReferences(doc *timeline.Document, id string) []Reference {
	var refs []Reference
	for _, t := range doc.Tracks {
		for _, seg := range t.Segments {
			if seg.MaterialID == id {
				refs = append(refs, Reference{TrackID: t.ID, SegmentID: seg.ID, Field: FieldMaterialID})
			}
			for _, ref := range seg.ExtraRefs {
				if ref == id {
					refs = append(refs, Reference{TrackID: t.ID, SegmentID: seg.ID, Field: FieldExtraRefs})
				}
			}
		}
	}
	return refs
}

// Swap points every reference to oldID at a new material that carries a
// fresh id and the asset at assetPath. The asset is probed and copied into
// StoreDir before the document changes; any failure leaves the document
// untouched and removes the copy. In dry-run mode only the references that
// would be rewritten are reported.
func (s Swapper) Swap(ctx context.Context, doc *timeline.Document, oldID, assetPath string, dryRun bool) (SwapResult, error) {
	logger := logging.NewComponentLogger(s.Logger, "swap")
	result := SwapResult{OldID: oldID, DryRun: dryRun}

	old, ok := doc.MaterialByID(oldID)
	if !ok {
		return result, timeline.Wrap(timeline.ErrNotFound, "edit", "swap",
			fmt.Sprintf("material %s", oldID), nil)
	}
	result.References = FindReferences(doc, oldID)
	if dryRun {
		logger.Info("swap planned",
			logging.String(logging.FieldEventType, "swap_planned"),
			logging.String("material_id", oldID),
			logging.Int("references", len(result.References)),
		)
		return result, nil
	}
	if old.Kind != timeline.MaterialVisual && old.Kind != timeline.MaterialAudio {
		return result, fmt.Errorf("swap material %s: category %s has no asset path", oldID, old.Category)
	}

	prober := s.Prober
	if prober == nil {
		prober = ffprobe.Prober{}
	}
	asset, err := prober.Probe(ctx, assetPath)
	if err != nil {
		return result, fmt.Errorf("probe %s: %w", assetPath, err)
	}

	stored, err := s.store(assetPath)
	if err != nil {
		return result, err
	}
	cleanup := func() {
		if rmErr := os.Remove(stored); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warn("stored asset cleanup failed",
				logging.String("path", stored),
				logging.Error(rmErr),
			)
		}
	}

	newID, err := refindex.New(doc).NewID(refindex.ScopeMaterials)
	if err != nil {
		cleanup()
		return result, err
	}

	replacement := old.WithID(newID)
	if v, ok := replacement.AsVisual(); ok {
		v.Path = stored
		if asset.Width > 0 && asset.Height > 0 {
			v.Width, v.Height = asset.Width, asset.Height
		}
	}
	if a, ok := replacement.AsAudio(); ok {
		a.Path = stored
		if asset.DurationUS > 0 {
			a.DurationUS = asset.DurationUS
		}
	}
	if err := replacement.SetField("material_name", filepath.Base(stored)); err != nil {
		cleanup()
		return result, fmt.Errorf("rename material: %w", err)
	}
	if !doc.ReplaceMaterial(oldID, replacement) {
		cleanup()
		return result, fmt.Errorf("swap material %s: replace failed", oldID)
	}

	result.Rewritten = RewriteReferences(doc, oldID, newID)
	result.NewID = newID
	result.StoredPath = stored

	logger.Info("asset swapped",
		logging.String(logging.FieldEventType, "asset_swapped"),
		logging.String("old_id", oldID),
		logging.String("new_id", newID),
		logging.String("stored_path", stored),
		logging.Int("rewritten", result.Rewritten),
		logging.Int64("duration_us", asset.DurationUS),
	)
	return result, nil
}

// RewriteReferences replaces oldID with newID in every material_id and
// extra ref and returns how many were changed.
func RewriteReferences(doc *timeline.Document, oldID, newID string) int {
	n := 0
	for _, t := range doc.Tracks {
		for _, seg := range t.Segments {
			if seg.MaterialID == oldID {
				seg.MaterialID = newID
				n++
			}
			for i, ref := range seg.ExtraRefs {
				if ref == oldID {
					seg.ExtraRefs[i] = newID
					n++
				}
			}
		}
	}
	return n
}

// store copies src into StoreDir under a name that does not exist yet.
func (s Swapper) store(src string) (string, error) {
	dir := strings.TrimSpace(s.StoreDir)
	if dir == "" {
		return "", errors.New("swap: asset store directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create asset store: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(src))
	stem := textutil.SanitizeToken(strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)))
	for attempt := 0; attempt < maxStoreAttempts; attempt++ {
		name := fmt.Sprintf("%s-%s%s", stem, strings.ReplaceAll(uuid.NewString(), "-", "")[:8], ext)
		dst := filepath.Join(dir, name)
		err := fileutil.CopyFileExclusive(src, dst)
		if err == nil {
			return dst, nil
		}
		if errors.Is(err, fileutil.ErrExists) {
			continue
		}
		return "", fmt.Errorf("store asset: %w", err)
	}
	return "", timeline.Wrap(timeline.ErrConflict, "edit", "store asset",
		fmt.Sprintf("no free file name in %s", dir), nil)
}
