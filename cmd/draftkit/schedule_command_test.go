package main

import (
	"encoding/json"
	"testing"

	"draftkit/internal/journal"
)

const twoItems = `[{"summary":"one","duration_sec":2},{"summary":"two","duration_sec":3}]`

func TestScheduleCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	items := writeInput(t, env, "items.json", twoItems)

	out, _, err := runCLI(t, env, "--json", "schedule", "--items", items, "--fps", "30", "--crossfade", "0.5")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	var got scheduleOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode schedule: %v\n%s", err, out)
	}
	if got.Schedule.OverlapFrames != 15 || got.Schedule.TotalFrames != 135 {
		t.Fatalf("unexpected schedule %+v", got.Schedule)
	}
	if got.Schedule.Placed[1].StartFrame != 45 {
		t.Fatalf("second item starts at %d, want 45", got.Schedule.Placed[1].StartFrame)
	}
	if len(got.Captions) != 2 {
		t.Fatalf("expected 2 captions, got %+v", got.Captions)
	}
	if got.Captions[0].EndFrame != got.Captions[1].StartFrame {
		t.Fatalf("captions should meet inside the overlap: %+v", got.Captions)
	}
	if got.Captions[0].StartFrame != 0 || got.Captions[1].EndFrame != 135 || got.Captions[1].Text != "two" {
		t.Fatalf("unexpected captions %+v", got.Captions)
	}
}

func TestScheduleCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)
	items := writeInput(t, env, "items.json", twoItems)

	out, _, err := runCLI(t, env, "schedule", "--items", items)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	requireContains(t, out, "Caption start")
	requireContains(t, out, "15 frame overlap")
}

func TestScheduleApplyRetimesTrack(t *testing.T) {
	env := setupCLITestEnv(t)
	items := writeInput(t, env, "items.json",
		`[{"summary":"a","duration_sec":2},{"summary":"b","duration_sec":2},{"summary":"c","duration_sec":2}]`)

	out, _, err := runCLI(t, env, "--json", "schedule", "--items", items, "--fps", "30", "--crossfade", "0.5",
		"--apply", "--track", "T-VIDEO", "demo")
	if err != nil {
		t.Fatalf("schedule --apply: %v", err)
	}
	var outcomes []projectOutcome
	if err := json.Unmarshal([]byte(out), &outcomes); err != nil {
		t.Fatalf("decode outcomes: %v\n%s", err, out)
	}
	if len(outcomes) != 1 || outcomes[0].Result == nil || outcomes[0].Result.Status != journal.StatusSucceeded {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}

	video := env.content(t, env.projectDir).Tracks[0]
	if got := video.Segments[1].Target.StartUS; got != 1_500_000 {
		t.Fatalf("second segment starts at %d, want 1500000", got)
	}
	if got := video.Segments[2].Target.StartUS; got != 3_000_000 {
		t.Fatalf("third segment starts at %d, want 3000000", got)
	}
}

func TestScheduleRejectsProjectsWithoutApply(t *testing.T) {
	env := setupCLITestEnv(t)
	items := writeInput(t, env, "items.json", twoItems)
	if _, _, err := runCLI(t, env, "schedule", "--items", items, "demo"); err == nil {
		t.Fatal("expected projects without --apply to fail")
	}
}
