package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary", Optional: true},
		{Name: "Empty"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" || !results[1].Optional {
		t.Fatalf("unexpected missing result %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected empty result %#v", results[2])
	}
}

func TestResolveFFprobePath(t *testing.T) {
	binDir := t.TempDir()
	stub := writeStub(t, binDir, "ffprobe")
	t.Setenv("PATH", binDir)

	if got := ResolveFFprobePath(""); got != stub {
		t.Fatalf("ResolveFFprobePath(\"\") = %q, want %q", got, stub)
	}
	if got := ResolveFFprobePath("/opt/ffprobe"); got != "/opt/ffprobe" {
		t.Fatalf("explicit path changed: %q", got)
	}
	if got := ResolveFFprobePath("ffprobe-missing"); got != "ffprobe-missing" {
		t.Fatalf("unresolvable name changed: %q", got)
	}
}
