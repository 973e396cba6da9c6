package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"draftkit/internal/timeline"
)

// SampleDraft is a small content document: a video track with an empty name
// and three back-to-back three second segments, plus a narration track.
// Fields the edit operations do not model (visible, canvas_config, version)
// are present so round-trip tests can check they survive.
const SampleDraft = `{"id":"D1F0C9A2","duration":9000000,"fps":30.0,"canvas_config":{"width":1920,"height":1080},"tracks":[{"id":"T-VIDEO","type":"video","name":"","attribute":0,"segments":[{"id":"S1","material_id":"M-V1","target_timerange":{"start":0,"duration":3000000},"source_timerange":{"start":0,"duration":3000000},"render_timerange":{"start":0,"duration":3000000},"speed":1.0,"extra_material_refs":["SPD-1"],"visible":true},{"id":"S2","material_id":"M-V2","target_timerange":{"start":3000000,"duration":3000000},"source_timerange":{"start":0,"duration":3000000},"render_timerange":{"start":3000000,"duration":3000000},"speed":1.0,"extra_material_refs":["SPD-2"],"visible":true},{"id":"S3","material_id":"M-V3","target_timerange":{"start":6000000,"duration":3000000},"source_timerange":{"start":0,"duration":3000000},"render_timerange":{"start":6000000,"duration":3000000},"speed":1.0,"extra_material_refs":["SPD-3"],"visible":true}]},{"id":"T-AUDIO","type":"audio","name":"narration","segments":[{"id":"S4","material_id":"M-A1","target_timerange":{"start":0,"duration":9000000},"source_timerange":null,"speed":1.0,"extra_material_refs":[]}]}],"materials":{"videos":[{"id":"M-V1","path":"/assets/a.png","width":1920,"height":1080,"type":"photo","material_name":"a.png"},{"id":"M-V2","path":"/assets/b.png","width":1920,"height":1080,"type":"photo","material_name":"b.png"},{"id":"M-V3","path":"/assets/c.png","width":1920,"height":1080,"type":"photo","material_name":"c.png"}],"audios":[{"id":"M-A1","path":"/assets/narration.mp3","duration":9000000,"name":"narration"}],"speeds":[{"id":"SPD-1","speed":1.0,"type":"speed"},{"id":"SPD-2","speed":1.0,"type":"speed"},{"id":"SPD-3","speed":1.0,"type":"speed"}],"transitions":[],"material_animations":[],"canvases":[]},"version":360000}`

// ParseDraft parses raw and fails the test on error.
func ParseDraft(t testing.TB, raw string) *timeline.Document {
	t.Helper()
	doc, err := timeline.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse draft: %v", err)
	}
	return doc
}

// SampleDocument parses SampleDraft.
func SampleDocument(t testing.TB) *timeline.Document {
	t.Helper()
	return ParseDraft(t, SampleDraft)
}

// WriteProject creates a project directory holding raw as both the content
// and info documents and returns the directory.
func WriteProject(t testing.TB, root, name, raw, contentFile, infoFile string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir project: %v", err)
	}
	for _, file := range []string{contentFile, infoFile} {
		if err := os.WriteFile(filepath.Join(dir, file), []byte(raw), 0o644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
	}
	return dir
}
