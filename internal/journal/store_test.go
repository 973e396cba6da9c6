package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	run := &Run{
		RunID:      "run-1",
		Project:    "demo",
		Operation:  "crossfade",
		Status:     StatusSucceeded,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Details:    json.RawMessage(`{"injected":2}`),
		Backups:    []string{"/p/demo/draft_content.json.bak-20260501-100000"},
	}
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Project != "demo" || got.Status != StatusSucceeded || !got.StartedAt.Equal(started) {
		t.Fatalf("unexpected run %+v", got)
	}
	if string(got.Details) != `{"injected":2}` || len(got.Backups) != 1 {
		t.Fatalf("details/backups not round-tripped: %+v", got)
	}
	if got.Message != "" {
		t.Fatalf("unexpected message %q", got.Message)
	}

	missing, err := store.Get(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("Get(missing) = %v, %v", missing, err)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for i, project := range []string{"a", "b", "a", "a"} {
		run := &Run{RunID: "r", Project: project, Operation: "dedupe", Status: StatusSucceeded, Message: string(rune('0' + i))}
		if err := store.Record(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.List(ctx, Filter{Project: "a", Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].Message != "3" || runs[1].Message != "2" {
		t.Fatalf("unexpected runs %+v", runs)
	}

	all, err := store.List(ctx, Filter{})
	if err != nil || len(all) != 4 {
		t.Fatalf("List(all) = %d, %v", len(all), err)
	}
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	old := &Run{RunID: "old", Project: "p", Operation: "sync", Status: StatusFailed, StartedAt: time.Now().Add(-48 * time.Hour)}
	fresh := &Run{RunID: "new", Project: "p", Operation: "sync", Status: StatusSucceeded}
	for _, r := range []*Run{old, fresh} {
		if err := store.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	n, err := store.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("Prune = %d, %v", n, err)
	}
}

func TestReopenChecksSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestRetryOnBusy(t *testing.T) {
	attempts := 0
	err := retryOnBusy(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Fatalf("retryOnBusy = %v after %d attempts", err, attempts)
	}

	attempts = 0
	err = retryOnBusy(context.Background(), func() error {
		attempts++
		return sql.ErrConnDone
	})
	if !errors.Is(err, sql.ErrConnDone) || attempts != 1 {
		t.Fatalf("non-busy error retried: %v after %d attempts", err, attempts)
	}
}
