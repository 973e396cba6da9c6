package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"draftkit/internal/backup"
	"draftkit/internal/journal"
	"draftkit/internal/logging"
	"draftkit/internal/timeline"
)

// BackupSet is one backup of the pair, identified by its run suffix.
type BackupSet struct {
	Suffix  string       `json:"suffix"`
	Content *backup.Info `json:"content,omitempty"`
	Info    *backup.Info `json:"info,omitempty"`
}

// Complete reports whether both files were backed up under this suffix.
func (s BackupSet) Complete() bool {
	return s.Content != nil && s.Info != nil
}

// Backups lists backup sets newest first.
func (p *Project) Backups() ([]BackupSet, error) {
	manager := p.newBackupManager()
	contentBackups, err := manager.List(p.ContentPath)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	infoBackups, err := manager.List(p.InfoPath)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	bySuffix := make(map[string]*BackupSet)
	var order []string
	add := func(base string, list []backup.Info, content bool) {
		for i := range list {
			suffix := strings.TrimPrefix(list[i].Name, base+".")
			set, ok := bySuffix[suffix]
			if !ok {
				set = &BackupSet{Suffix: suffix}
				bySuffix[suffix] = set
				order = append(order, suffix)
			}
			if content {
				set.Content = &list[i]
			} else {
				set.Info = &list[i]
			}
		}
	}
	add(filepath.Base(p.ContentPath), contentBackups, true)
	add(filepath.Base(p.InfoPath), infoBackups, false)

	sets := make([]BackupSet, 0, len(order))
	for _, suffix := range order {
		sets = append(sets, *bySuffix[suffix])
	}
	sort.SliceStable(sets, func(i, j int) bool { return sets[i].info().Newer(sets[j].info()) })
	return sets, nil
}

func (s BackupSet) info() backup.Info {
	if s.Content != nil {
		return *s.Content
	}
	return *s.Info
}

// Restore puts the pair back to the backup set with suffix, or the newest
// complete set when suffix is empty. The current files are backed up first
// so a restore can itself be undone.
func (p *Project) Restore(ctx context.Context, suffix string) (Result, error) {
	sets, err := p.Backups()
	if err != nil {
		return Result{Project: p.Name, Operation: "restore"}, err
	}
	var chosen *BackupSet
	for i := range sets {
		if !sets[i].Complete() {
			continue
		}
		if suffix == "" || sets[i].Suffix == suffix {
			chosen = &sets[i]
			break
		}
	}
	if chosen == nil {
		msg := "no complete backup"
		if suffix != "" {
			msg = fmt.Sprintf("no complete backup with suffix %s", suffix)
		}
		return Result{Project: p.Name, Operation: "restore"}, timeline.Wrap(timeline.ErrNotFound, "project", "restore", msg, nil)
	}

	return p.restoreSet(ctx, *chosen)
}

func (p *Project) restoreSet(ctx context.Context, set BackupSet) (result Result, err error) {
	result = Result{RunID: newRunID(), Project: p.Name, Operation: "restore", Details: set}
	ctx = logging.WithRunID(logging.WithProject(ctx, p.Name), result.RunID)
	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldOperation, "restore"))
	started := p.opts.Now()
	defer func() { p.record(ctx, logger, started, &result, err) }()

	unlock, err := p.lock(ctx, false)
	if err != nil {
		result.Status = journal.StatusFailed
		return result, err
	}
	defer unlock()

	// Read the set before backing up: retention may prune it.
	contentData, err := os.ReadFile(set.Content.Path)
	if err != nil {
		result.Status = journal.StatusFailed
		return result, fmt.Errorf("read backup: %w", err)
	}
	infoData, err := os.ReadFile(set.Info.Path)
	if err != nil {
		result.Status = journal.StatusFailed
		return result, fmt.Errorf("read backup: %w", err)
	}

	manager := p.newBackupManager()
	for _, target := range []string{p.ContentPath, p.InfoPath} {
		path, err := manager.Backup(target)
		if err != nil {
			result.Status = journal.StatusFailed
			return result, fmt.Errorf("backup before restore: %w", err)
		}
		result.Backups = append(result.Backups, path)
	}
	if err := manager.AtomicWrite(p.ContentPath, contentData); err != nil {
		result.Status = journal.StatusFailed
		return result, fmt.Errorf("restore %s: %w", p.ContentPath, err)
	}
	result.Changed = true
	if err := manager.AtomicWrite(p.InfoPath, infoData); err != nil {
		result.Status = journal.StatusFailed
		return result, fmt.Errorf("restore %s: %w", p.InfoPath, err)
	}
	result.Status = journal.StatusSucceeded
	logger.Info("project restored",
		logging.String(logging.FieldEventType, "project_restored"),
		logging.String("suffix", set.Suffix),
	)
	return result, nil
}
