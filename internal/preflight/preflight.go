package preflight

import (
	"context"

	"draftkit/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every check that applies to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Projects directory", cfg.Paths.ProjectsDir)}
	if cfg.Paths.BackupDir != "" {
		results = append(results, CheckWritableOrCreatable("Backup directory", cfg.Paths.BackupDir))
	}
	results = append(results,
		CheckWritableOrCreatable("Log directory", cfg.Paths.LogDir),
		CheckJournal(ctx, cfg.Paths.JournalPath),
	)
	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Command}
		if status.Detail != "" {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
