package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBackupBesideTargetAndSkipWithinRun(t *testing.T) {
	target := filepath.Join(t.TempDir(), "demo", "draft_content.json")
	writeFile(t, target, "v1")

	m := NewManager(Config{}, base)
	path, err := m.Backup(target)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if want := target + ".bak-20260314-092653"; path != want {
		t.Fatalf("backup path %s, want %s", path, want)
	}

	writeFile(t, target, "v2")
	again, err := m.Backup(target)
	if err != nil || again != path {
		t.Fatalf("second Backup = %s, %v", again, err)
	}
	if got := readFile(t, path); got != "v1" {
		t.Fatalf("backup overwritten within a run: %q", got)
	}
}

func TestBackupIntoDirectory(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "projects", "demo", "draft_info.json")
	writeFile(t, target, "info")

	m := NewManager(Config{Dir: filepath.Join(root, "backups")}, base)
	path, err := m.Backup(target)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if !strings.HasPrefix(path, filepath.Join(root, "backups", "demo-")) {
		t.Fatalf("unexpected backup location %s", path)
	}
	if got := readFile(t, path); got != "info" {
		t.Fatalf("backup content %q", got)
	}
}

func TestBackupNeverReusesAnotherRunsCopy(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	content := filepath.Join(dir, "draft_content.json")
	info := filepath.Join(dir, "draft_info.json")
	writeFile(t, content, "c1")
	writeFile(t, info, "i1")

	first := NewManager(Config{}, base)
	for _, target := range []string{content, info} {
		if _, err := first.Backup(target); err != nil {
			t.Fatalf("first run Backup: %v", err)
		}
	}

	writeFile(t, content, "c2")
	writeFile(t, info, "i2")
	second := NewManager(Config{}, base)
	contentPath, err := second.Backup(content)
	if err != nil {
		t.Fatalf("second run Backup: %v", err)
	}
	infoPath, err := second.Backup(info)
	if err != nil {
		t.Fatalf("second run Backup: %v", err)
	}
	if second.Suffix() == first.Suffix() {
		t.Fatalf("second run reused suffix %s", first.Suffix())
	}
	if want := "bak-20260314-092653-2"; second.Suffix() != want {
		t.Fatalf("suffix %s, want %s", second.Suffix(), want)
	}
	if got := readFile(t, contentPath); got != "c2" {
		t.Fatalf("second run content backup %q", got)
	}
	if got := readFile(t, infoPath); got != "i2" {
		t.Fatalf("second run info backup %q", got)
	}

	backups, err := second.List(content)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(backups) != 2 || backups[0].Path != contentPath || backups[0].Seq != 2 {
		t.Fatalf("unexpected listing %+v", backups)
	}
}

func TestBackupDirSeparatesProjectsWithSameName(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a", "demo", "draft_content.json")
	b := filepath.Join(root, "b", "demo", "draft_content.json")
	writeFile(t, a, "project a")
	writeFile(t, b, "project b")

	cfg := Config{Dir: filepath.Join(root, "backups")}
	pathA, err := NewManager(cfg, base).Backup(a)
	if err != nil {
		t.Fatalf("Backup a: %v", err)
	}
	pathB, err := NewManager(cfg, base).Backup(b)
	if err != nil {
		t.Fatalf("Backup b: %v", err)
	}
	if filepath.Dir(pathA) == filepath.Dir(pathB) {
		t.Fatalf("projects share backup dir %s", filepath.Dir(pathA))
	}
	if got := readFile(t, pathB); got != "project b" {
		t.Fatalf("project b backup holds %q", got)
	}
	listed, err := NewManager(cfg, base).List(a)
	if err != nil || len(listed) != 1 || listed[0].Path != pathA {
		t.Fatalf("List(a) = %+v, %v", listed, err)
	}
}

func TestListOrdersCountersNumerically(t *testing.T) {
	target := filepath.Join(t.TempDir(), "demo", "draft_content.json")
	writeFile(t, target, "v")
	for _, suffix := range []string{"", "-2", "-10", "-x"} {
		writeFile(t, target+".bak-20260314-092653"+suffix, "v")
	}

	backups, err := NewManager(Config{}, base).List(target)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var seqs []int
	for _, b := range backups {
		seqs = append(seqs, b.Seq)
	}
	if len(seqs) != 3 || seqs[0] != 10 || seqs[1] != 2 || seqs[2] != 1 {
		t.Fatalf("unexpected order %v", seqs)
	}
}

func TestRetentionAndList(t *testing.T) {
	target := filepath.Join(t.TempDir(), "demo", "draft_content.json")
	writeFile(t, target, "v0")

	for i := 0; i < 4; i++ {
		m := NewManager(Config{RetentionCount: 2}, base.Add(time.Duration(i)*time.Minute))
		if _, err := m.Backup(target); err != nil {
			t.Fatalf("Backup %d: %v", i, err)
		}
	}

	backups, err := NewManager(Config{}, base).List(target)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("kept %d backups, want 2", len(backups))
	}
	if !backups[0].CreatedAt.Equal(base.Add(3*time.Minute)) || !backups[1].CreatedAt.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("unexpected order %v, %v", backups[0].CreatedAt, backups[1].CreatedAt)
	}
}

func TestListMissingDirectory(t *testing.T) {
	backups, err := NewManager(Config{Dir: filepath.Join(t.TempDir(), "none")}, base).List("/x/demo/file.json")
	if err != nil || backups != nil {
		t.Fatalf("List = %v, %v", backups, err)
	}
}

func TestRestoreAndAtomicWrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "demo", "draft_content.json")
	writeFile(t, target, "original")

	m := NewManager(Config{}, base)
	path, err := m.Backup(target)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AtomicWrite(target, []byte("mutated")); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}
	if got := readFile(t, target); got != "mutated" {
		t.Fatalf("after write %q", got)
	}
	if err := m.Restore(path, target); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := readFile(t, target); got != "original" {
		t.Fatalf("after restore %q", got)
	}
	if err := m.Restore(path+".missing", target); err == nil {
		t.Fatal("expected error restoring a missing backup")
	}
}
