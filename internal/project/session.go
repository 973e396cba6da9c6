package project

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"draftkit/internal/backup"
	"draftkit/internal/integrity"
	"draftkit/internal/journal"
	"draftkit/internal/logging"
	"draftkit/internal/mirror"
)

// ApplyFunc edits the content document in place and returns details worth
// reporting. It must not touch the filesystem beyond what it cleans up via
// Mutation.Abort.
type ApplyFunc func(ctx context.Context, pair *Pair) (any, error)

// Mutation is one named edit.
type Mutation struct {
	Operation string
	Expect    integrity.Expect
	DryRun    bool
	Apply     ApplyFunc
	// Abort undoes side effects of Apply when the edit is not written.
	Abort func()
}

// Result reports one run of a mutation.
type Result struct {
	RunID     string           `json:"run_id"`
	Project   string           `json:"project"`
	Operation string           `json:"operation"`
	Status    journal.Status   `json:"status"`
	Changed   bool             `json:"changed"`
	Details   any              `json:"details,omitempty"`
	Backups   []string         `json:"backups,omitempty"`
	Issues    integrity.Issues `json:"issues,omitempty"`
}

// writeFile is replaced in tests to simulate a failed write.
var writeFile = func(m *backup.Manager, path string, data []byte) error {
	return m.AtomicWrite(path, data)
}

func newRunID() string {
	return uuid.NewString()
}

// Apply runs m against the project. Nothing is written unless the edited
// pair passes every integrity check; a write that does not read back cleanly
// is rolled back from the backups taken just before it.
func (p *Project) Apply(ctx context.Context, m Mutation) (result Result, err error) {
	result = Result{RunID: newRunID(), Project: p.Name, Operation: m.Operation}
	ctx = logging.WithRunID(logging.WithProject(ctx, p.Name), result.RunID)
	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldOperation, m.Operation))
	started := p.opts.Now()

	defer func() {
		if err != nil && m.Abort != nil && !result.Changed {
			m.Abort()
		}
		p.record(ctx, logger, started, &result, err)
	}()

	unlock, err := p.lock(ctx, false)
	if err != nil {
		result.Status = journal.StatusFailed
		return result, err
	}
	defer unlock()

	pair, err := p.Load()
	if err != nil {
		result.Status = journal.StatusFailed
		return result, err
	}
	before := integrity.TakeSnapshot(pair.Content)

	details, err := m.Apply(ctx, pair)
	result.Details = details
	if err != nil {
		result.Status = journal.StatusFailed
		return result, fmt.Errorf("%s: %w", m.Operation, err)
	}

	pair.Content.FitDuration()
	mirror.Sync(pair.Content, pair.Info)

	issues := integrity.Check(before, pair.Content, m.Expect)
	issues = append(issues, integrity.CheckPair(pair.Content, pair.Info)...)
	if len(issues) > 0 {
		result.Status = journal.StatusFailed
		result.Issues = issues
		return result, fmt.Errorf("%s: %w", m.Operation, issues.Err())
	}

	contentOut, err := pair.Content.Serialize()
	if err != nil {
		result.Status = journal.StatusFailed
		return result, err
	}
	infoOut, err := pair.Info.Serialize()
	if err != nil {
		result.Status = journal.StatusFailed
		return result, err
	}

	changed := !bytes.Equal(contentOut, pair.contentRaw) || !bytes.Equal(infoOut, pair.infoRaw)
	if m.DryRun {
		result.Status = journal.StatusDryRun
		return result, nil
	}
	if !changed {
		result.Status = journal.StatusSucceeded
		logger.Info("no changes to write", logging.String(logging.FieldEventType, "project_unchanged"))
		return result, nil
	}

	manager := p.newBackupManager()
	if err := p.write(logger, manager, &result, contentOut, infoOut); err != nil {
		return result, err
	}
	result.Status = journal.StatusSucceeded
	logger.Info("project written",
		logging.String(logging.FieldEventType, "project_written"),
		logging.Int("backups", len(result.Backups)),
		logging.Int64("duration_us", pair.Content.DurationUS),
	)
	return result, nil
}

// write backs up both files, replaces them, and reads them back. Any
// failure after the first replacement restores both files.
func (p *Project) write(logger *slog.Logger, manager *backup.Manager, result *Result, contentOut, infoOut []byte) error {
	targets := []struct {
		path string
		data []byte
	}{
		{p.ContentPath, contentOut},
		{p.InfoPath, infoOut},
	}
	for _, target := range targets {
		path, err := manager.Backup(target.path)
		if path != "" && err == nil {
			result.Backups = append(result.Backups, path)
		}
		if err != nil {
			result.Status = journal.StatusFailed
			return fmt.Errorf("backup before write: %w", err)
		}
	}

	result.Changed = true
	var writeErr error
	for _, target := range targets {
		if err := writeFile(manager, target.path, target.data); err != nil {
			writeErr = fmt.Errorf("write %s: %w", target.path, err)
			break
		}
	}
	if writeErr == nil {
		writeErr = p.verify()
	}
	if writeErr == nil {
		return nil
	}

	result.Status = journal.StatusRolledBack
	var restoreErrs []error
	for i, target := range targets {
		if err := manager.Restore(result.Backups[i], target.path); err != nil {
			restoreErrs = append(restoreErrs, err)
		}
	}
	if len(restoreErrs) > 0 {
		result.Status = journal.StatusFailed
		logging.ErrorWithContext(logger, "rollback failed", "rollback_failed",
			logging.Error(errors.Join(restoreErrs...)),
			logging.String(logging.FieldErrorHint, "restore manually with draftkit backups restore"),
		)
		return errors.Join(append([]error{writeErr}, restoreErrs...)...)
	}
	result.Changed = false
	logging.WarnWithContext(logger, "write rolled back", "write_rolled_back",
		logging.Error(writeErr),
		logging.String(logging.FieldImpact, "project restored to its previous state"),
	)
	return fmt.Errorf("rolled back: %w", writeErr)
}

// verify re-reads the pair from disk and runs the integrity checks on it.
func (p *Project) verify() error {
	pair, err := p.Load()
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	issues := integrity.Issues(pair.Content.Validate())
	issues = append(issues, integrity.CheckPair(pair.Content, pair.Info)...)
	if err := issues.Err(); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	return nil
}

func (p *Project) record(ctx context.Context, logger *slog.Logger, started time.Time, result *Result, runErr error) {
	if runErr != nil {
		attrs := []logging.Attr{
			logging.String(logging.FieldEventType, "operation_failed"),
			logging.String("status", string(result.Status)),
			logging.Error(runErr),
		}
		if len(result.Issues) > 0 {
			attrs = append(attrs, logging.Any("issues", result.Issues))
		}
		logger.Error("operation failed", logging.Args(attrs...)...)
	}
	if p.opts.Journal == nil {
		return
	}
	run := &journal.Run{
		RunID:      result.RunID,
		Project:    p.Dir,
		Operation:  result.Operation,
		Status:     result.Status,
		StartedAt:  started,
		FinishedAt: p.opts.Now(),
		Backups:    result.Backups,
	}
	if runErr != nil {
		run.Message = runErr.Error()
	} else if !result.Changed && result.Status == journal.StatusSucceeded {
		run.Message = "no changes"
	}
	if result.Details != nil || len(result.Issues) > 0 {
		payload := struct {
			Details any              `json:"details,omitempty"`
			Issues  integrity.Issues `json:"issues,omitempty"`
		}{result.Details, result.Issues}
		if data, err := json.Marshal(payload); err == nil {
			run.Details = data
		}
	}
	if err := p.opts.Journal.Record(ctx, run); err != nil {
		logging.WarnWithContext(logger, "journal write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded in journal"),
		)
	}
}
