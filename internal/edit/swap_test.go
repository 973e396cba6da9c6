package edit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"draftkit/internal/media/ffprobe"
	"draftkit/internal/testsupport"
	"draftkit/internal/timeline"
)

type fakeProber struct {
	asset ffprobe.Asset
	err   error
	paths []string
}

func (p *fakeProber) Probe(_ context.Context, path string) (ffprobe.Asset, error) {
	p.paths = append(p.paths, path)
	return p.asset, p.err
}

func writeAsset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func countReferences(doc *timeline.Document, id string) int {
	return len(FindReferences(doc, id))
}

func TestSwapReplacesIdentityAndRewritesReferences(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	store := filepath.Join(t.TempDir(), "assets")
	asset := writeAsset(t, "New Slide.PNG", "png-bytes")
	prober := &fakeProber{asset: ffprobe.Asset{Width: 1080, Height: 1920, HasVideo: true}}

	result, err := Swapper{StoreDir: store, Prober: prober}.Swap(context.Background(), doc, "M-V2", asset, false)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if result.NewID == "" || result.NewID == "M-V2" {
		t.Fatalf("expected a fresh id, got %q", result.NewID)
	}
	if result.Rewritten != 1 || len(result.References) != 1 || result.References[0].SegmentID != "S2" {
		t.Fatalf("unexpected result %+v", result)
	}

	out := reparse(t, doc)
	if n := countReferences(out, "M-V2"); n != 0 {
		t.Fatalf("old id still referenced %d times", n)
	}
	if n := countReferences(out, result.NewID); n == 0 {
		t.Fatal("new id not referenced")
	}
	if _, ok := out.MaterialByID("M-V2"); ok {
		t.Fatal("old material still present")
	}
	videos := out.Materials[timeline.CategoryVideos]
	if len(videos) != 3 || videos[1].ID != result.NewID {
		t.Fatalf("replacement not in place: %v", []string{videos[0].ID, videos[1].ID, videos[2].ID})
	}
	visual, _ := videos[1].AsVisual()
	if visual.Path != result.StoredPath || visual.Width != 1080 || visual.Height != 1920 {
		t.Fatalf("unexpected visual payload %+v", visual)
	}
	assertValid(t, out)

	base := filepath.Base(result.StoredPath)
	if filepath.Dir(result.StoredPath) != store || !strings.HasPrefix(base, "new_slide-") || !strings.HasSuffix(base, ".png") {
		t.Fatalf("unexpected stored path %s", result.StoredPath)
	}
	data, err := os.ReadFile(result.StoredPath)
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("stored asset = %q, %v", data, err)
	}
	serialized, _ := out.Serialize()
	if !bytes.Contains(serialized, []byte(`"material_name":"`+base+`"`)) {
		t.Fatalf("material_name not updated: %s", serialized)
	}
	if len(prober.paths) != 1 || prober.paths[0] != asset {
		t.Fatalf("prober called with %v", prober.paths)
	}
}

func TestSwapAudioRefreshesDuration(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	asset := writeAsset(t, "take2.mp3", "mp3")
	prober := &fakeProber{asset: ffprobe.Asset{DurationUS: 12_000_000, HasAudio: true}}

	result, err := Swapper{StoreDir: t.TempDir(), Prober: prober}.Swap(context.Background(), doc, "M-A1", asset, false)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	m, ok := doc.MaterialByID(result.NewID)
	if !ok {
		t.Fatal("new material missing")
	}
	audio, ok := m.AsAudio()
	if !ok || audio.DurationUS != 12_000_000 || audio.Path != result.StoredPath {
		t.Fatalf("unexpected audio payload %+v", audio)
	}
}

func TestSwapDryRunChangesNothing(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	before, _ := doc.Serialize()
	store := filepath.Join(t.TempDir(), "assets")
	prober := &fakeProber{}

	result, err := Swapper{StoreDir: store, Prober: prober}.Swap(context.Background(), doc, "M-V1", "/does/not/matter.png", true)
	if err != nil {
		t.Fatalf("Swap dry run: %v", err)
	}
	if !result.DryRun || result.NewID != "" || len(result.References) != 1 {
		t.Fatalf("unexpected dry-run result %+v", result)
	}
	after, _ := doc.Serialize()
	if !bytes.Equal(before, after) {
		t.Fatal("dry run mutated the document")
	}
	if _, err := os.Stat(store); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run touched the asset store: %v", err)
	}
	if len(prober.paths) != 0 {
		t.Fatal("dry run probed the asset")
	}
}

func TestSwapUnknownMaterial(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	_, err := Swapper{StoreDir: t.TempDir(), Prober: &fakeProber{}}.Swap(context.Background(), doc, "NOPE", "x.png", false)
	if !errors.Is(err, timeline.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSwapProbeFailureLeavesEverythingAlone(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	before, _ := doc.Serialize()
	store := t.TempDir()
	asset := writeAsset(t, "broken.png", "??")

	_, err := Swapper{StoreDir: store, Prober: &fakeProber{err: errors.New("invalid data")}}.Swap(context.Background(), doc, "M-V1", asset, false)
	if err == nil {
		t.Fatal("expected probe error")
	}
	after, _ := doc.Serialize()
	if !bytes.Equal(before, after) {
		t.Fatal("document changed after failed probe")
	}
	entries, _ := os.ReadDir(store)
	if len(entries) != 0 {
		t.Fatalf("asset store not empty: %v", entries)
	}
}

func TestSwapRejectsOpaqueMaterial(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	asset := writeAsset(t, "a.png", "x")
	if _, err := (Swapper{StoreDir: t.TempDir(), Prober: &fakeProber{}}).Swap(context.Background(), doc, "SPD-1", asset, false); err == nil {
		t.Fatal("expected error swapping a speed material")
	}
}

func TestRewriteReferencesCoversExtraRefs(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	if n := RewriteReferences(doc, "SPD-1", "SPD-NEW"); n != 1 {
		t.Fatalf("rewrote %d refs, want 1", n)
	}
	seg := mustSegment(t, doc, "T-VIDEO", "S1")
	if len(seg.ExtraRefs) != 1 || seg.ExtraRefs[0] != "SPD-NEW" {
		t.Fatalf("unexpected refs %v", seg.ExtraRefs)
	}
}
