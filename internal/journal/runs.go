package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusRolledBack Status = "rolled_back"
	StatusDryRun     Status = "dry_run"
)

// Run is one recorded mutation of one project.
type Run struct {
	ID         int64           `json:"id"`
	RunID      string          `json:"run_id"`
	Project    string          `json:"project"`
	Operation  string          `json:"operation"`
	Status     Status          `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at,omitzero"`
	Message    string          `json:"message,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	Backups    []string        `json:"backups,omitempty"`
}

// Filter narrows List.
type Filter struct {
	Project string
	Limit   int
}

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, run_id, project, operation, status, started_at, finished_at, message, details_json, backups_json"

// Record inserts run and fills in its ID.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	var backups any
	if len(run.Backups) > 0 {
		data, err := json.Marshal(run.Backups)
		if err != nil {
			return fmt.Errorf("marshal backups: %w", err)
		}
		backups = string(data)
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO runs (run_id, project, operation, status, started_at, finished_at, message, details_json, backups_json)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Project,
		run.Operation,
		string(run.Status),
		run.StartedAt.UTC().Format(timeLayout),
		nullableTime(run.FinishedAt),
		nullableString(run.Message),
		nullableString(string(run.Details)),
		backups,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	run.ID = id
	return nil
}

// Get fetches a run by row id. It returns nil when no such run exists.
func (s *Store) Get(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if project := strings.TrimSpace(filter.Project); project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune deletes runs that started before cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		status     string
		startedRaw string
		finished   sql.NullString
		message    sql.NullString
		details    sql.NullString
		backups    sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.RunID, &run.Project, &run.Operation, &status, &startedRaw, &finished, &message, &details, &backups); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.StartedAt = parseTime(startedRaw)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	run.Message = message.String
	if details.Valid && details.String != "" {
		run.Details = json.RawMessage(details.String)
	}
	if backups.Valid && backups.String != "" {
		if err := json.Unmarshal([]byte(backups.String), &run.Backups); err != nil {
			return nil, fmt.Errorf("decode backups: %w", err)
		}
	}
	return &run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}
