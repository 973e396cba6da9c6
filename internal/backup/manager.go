// Package backup snapshots project files before they are rewritten and puts
// them back when a write has to be rolled back.
//
// A Manager is created once per run. Every backup it takes carries the same
// suffix, so backing a file up twice in one run keeps the first (pre-mutation)
// copy.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"draftkit/internal/fileutil"
)

const (
	suffixPrefix = "bak-"
	stampLayout  = "20060102-150405"
	// maxSeq bounds the counter appended when a stamp is already taken.
	maxSeq = 1000
)

// Config controls where backups go and how many are kept.
type Config struct {
	// Dir holds backups as <Dir>/<project>-<hash>/<file>.<suffix>, the hash
	// taken from the project's absolute path. Empty keeps them beside the
	// original file.
	Dir string
	// RetentionCount is the number of backups kept per file; zero keeps all.
	RetentionCount int
}

// Info describes one backup on disk.
type Info struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	// Seq orders backups that share a timestamp; the first has 1.
	Seq int `json:"seq"`
}

// Newer reports whether i was taken after o.
func (i Info) Newer(o Info) bool {
	if !i.CreatedAt.Equal(o.CreatedAt) {
		return i.CreatedAt.After(o.CreatedAt)
	}
	return i.Seq > o.Seq
}

// Manager takes and restores backups for one run.
type Manager struct {
	config Config
	stamp  string

	mu sync.Mutex
	// suffix is fixed by the first backup of the run.
	suffix string
	taken  map[string]string
}

// NewManager fixes the run timestamp from now.
func NewManager(config Config, now time.Time) *Manager {
	return &Manager{
		config: config,
		stamp:  suffixPrefix + now.Format(stampLayout),
		taken:  make(map[string]string),
	}
}

// Suffix returns the suffix appended to every backup of this run. It is
// empty until the first backup is taken.
func (m *Manager) Suffix() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suffix
}

// Dir returns the directory holding backups of target.
func (m *Manager) Dir(target string) string {
	if m.config.Dir == "" {
		return filepath.Dir(target)
	}
	project, err := filepath.Abs(filepath.Dir(target))
	if err != nil {
		project = filepath.Clean(filepath.Dir(target))
	}
	sum := sha256.Sum256([]byte(project))
	return filepath.Join(m.config.Dir, filepath.Base(project)+"-"+hex.EncodeToString(sum[:4]))
}

// Backup copies target to its backup path and returns that path. Backing the
// same target up twice in one run keeps the first copy. Backups left by
// other runs are never reused: a run whose timestamp is already taken gets a
// counter appended to its suffix.
func (m *Manager) Backup(target string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if path, ok := m.taken[target]; ok {
		return path, nil
	}
	dir := m.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	if m.suffix == "" {
		suffix, err := m.reserveSuffix(dir)
		if err != nil {
			return "", err
		}
		m.suffix = suffix
	}

	dest := filepath.Join(dir, filepath.Base(target)+"."+m.suffix)
	if err := fileutil.CopyFileExclusive(target, dest); err != nil {
		return "", fmt.Errorf("backup %s: %w", target, err)
	}
	m.taken[target] = dest
	if err := m.enforceRetention(target); err != nil {
		return dest, fmt.Errorf("retention cleanup: %w", err)
	}
	return dest, nil
}

// reserveSuffix picks the first suffix for this run's stamp that no file in
// dir carries yet, so every file of the run shares one unused suffix.
func (m *Manager) reserveSuffix(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read backup dir: %w", err)
	}
	used := make(map[string]struct{})
	for _, entry := range entries {
		name := entry.Name()
		if idx := strings.LastIndex(name, "."+suffixPrefix); idx >= 0 {
			used[name[idx+1:]] = struct{}{}
		}
	}
	for seq := 1; seq <= maxSeq; seq++ {
		candidate := formatSuffix(m.stamp, seq)
		if _, ok := used[candidate]; !ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free backup suffix for %s in %s", m.stamp, dir)
}

func formatSuffix(stamp string, seq int) string {
	if seq <= 1 {
		return stamp
	}
	return stamp + "-" + strconv.Itoa(seq)
}

// parseSuffix splits a stamp with an optional "-N" counter.
func parseSuffix(value string) (time.Time, int, bool) {
	stamp, seq := value, 1
	if len(value) > len(stampLayout) {
		counter, ok := strings.CutPrefix(value[len(stampLayout):], "-")
		if !ok {
			return time.Time{}, 0, false
		}
		n, err := strconv.Atoi(counter)
		if err != nil || n < 2 {
			return time.Time{}, 0, false
		}
		stamp, seq = value[:len(stampLayout)], n
	}
	created, err := time.ParseInLocation(stampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return created, seq, true
}

// AtomicWrite replaces path with data through a temp file and rename.
func (m *Manager) AtomicWrite(path string, data []byte) error {
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// Restore atomically puts the contents of backupPath back at target.
func (m *Manager) Restore(backupPath, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("backup not found: %w", err)
	}
	if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
		return fmt.Errorf("restore %s: %w", target, err)
	}
	return nil
}

// List returns the backups of target, newest first.
func (m *Manager) List(target string) ([]Info, error) {
	dir := m.Dir(target)
	prefix := filepath.Base(target) + "." + suffixPrefix

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		created, seq, ok := parseSuffix(strings.TrimPrefix(entry.Name(), prefix))
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Name:      entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: created,
			Seq:       seq,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Newer(backups[j])
	})
	return backups, nil
}

func (m *Manager) enforceRetention(target string) error {
	if m.config.RetentionCount <= 0 {
		return nil
	}
	backups, err := m.List(target)
	if err != nil {
		return err
	}
	if len(backups) <= m.config.RetentionCount {
		return nil
	}
	for _, b := range backups[m.config.RetentionCount:] {
		if err := os.Remove(b.Path); err != nil {
			return err
		}
	}
	return nil
}
