package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"draftkit/internal/backup"
	"draftkit/internal/config"
	"draftkit/internal/journal"
	"draftkit/internal/logging"
	"draftkit/internal/timeline"
)

// LockFileName is created inside every project directory that is edited.
const LockFileName = ".draftkit.lock"

const lockRetryDelay = 50 * time.Millisecond

// ErrLocked is returned when another process holds the project lock.
var ErrLocked = errors.New("project locked")

// Options configures how projects are opened and written.
type Options struct {
	ContentFile string
	InfoFile    string
	Backup      backup.Config
	LockTimeout time.Duration
	// Journal is optional; runs are not recorded when it is nil.
	Journal *journal.Store
	Logger  *slog.Logger
	Now     func() time.Time
}

// OptionsFromConfig derives project options from cfg.
func OptionsFromConfig(cfg *config.Config, store *journal.Store, logger *slog.Logger) Options {
	return Options{
		ContentFile: cfg.Document.ContentFile,
		InfoFile:    cfg.Document.InfoFile,
		Backup: backup.Config{
			Dir:            cfg.Paths.BackupDir,
			RetentionCount: cfg.Backup.RetentionCount,
		},
		LockTimeout: time.Duration(cfg.Lock.TimeoutSeconds) * time.Second,
		Journal:     store,
		Logger:      logger,
	}
}

// Project is one project directory.
type Project struct {
	Dir         string
	Name        string
	ContentPath string
	InfoPath    string

	opts   Options
	logger *slog.Logger
}

// Open checks that dir holds both project files.
func Open(dir string, opts Options) (*Project, error) {
	if opts.ContentFile == "" || opts.InfoFile == "" {
		return nil, errors.New("project: content and info file names are required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	p := &Project{
		Dir:         abs,
		Name:        filepath.Base(abs),
		ContentPath: filepath.Join(abs, opts.ContentFile),
		InfoPath:    filepath.Join(abs, opts.InfoFile),
		opts:        opts,
		logger:      logging.NewComponentLogger(opts.Logger, "project"),
	}
	for _, path := range []string{p.ContentPath, p.InfoPath} {
		info, err := os.Stat(path)
		if err != nil {
			return nil, timeline.Wrap(timeline.ErrNotFound, "project", "open", path, err)
		}
		if info.IsDir() {
			return nil, timeline.Wrap(timeline.ErrNotFound, "project", "open", path+" is a directory", nil)
		}
	}
	return p, nil
}

// Discover returns every directory directly under root that contains
// contentFile, sorted by name.
func Discover(root, contentFile string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read projects dir: %w", err)
	}
	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if info, err := os.Stat(filepath.Join(dir, contentFile)); err == nil && !info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Pair is the loaded content and info documents.
type Pair struct {
	Content *timeline.Document
	Info    *timeline.Document

	contentRaw []byte
	infoRaw    []byte
}

// Load reads and parses both files without taking the lock.
func (p *Project) Load() (*Pair, error) {
	contentRaw, err := os.ReadFile(p.ContentPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.ContentPath, err)
	}
	infoRaw, err := os.ReadFile(p.InfoPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.InfoPath, err)
	}
	content, err := timeline.Parse(contentRaw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.opts.ContentFile, err)
	}
	info, err := timeline.Parse(infoRaw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.opts.InfoFile, err)
	}
	return &Pair{Content: content, Info: info, contentRaw: contentRaw, infoRaw: infoRaw}, nil
}

// lock takes the project lock, shared for readers and exclusive for writers,
// waiting up to the configured timeout.
func (p *Project) lock(ctx context.Context, shared bool) (func(), error) {
	fl := flock.New(filepath.Join(p.Dir, LockFileName))
	waitStart := time.Now()

	var (
		ok  bool
		err error
	)
	switch {
	case p.opts.LockTimeout <= 0 && shared:
		ok, err = fl.TryRLock()
	case p.opts.LockTimeout <= 0:
		ok, err = fl.TryLock()
	default:
		lockCtx, cancel := context.WithTimeout(ctx, p.opts.LockTimeout)
		defer cancel()
		if shared {
			ok, err = fl.TryRLockContext(lockCtx, lockRetryDelay)
		} else {
			ok, err = fl.TryLockContext(lockCtx, lockRetryDelay)
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("acquire project lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, p.Dir)
	}
	p.logger.Debug("project lock acquired",
		logging.String("path", fl.Path()),
		logging.Bool("shared", shared),
		logging.Duration("wait", time.Since(waitStart)),
	)
	return func() {
		if err := fl.Unlock(); err != nil {
			p.logger.Warn("release project lock failed", logging.String("path", fl.Path()), logging.Error(err))
		}
	}, nil
}

func (p *Project) newBackupManager() *backup.Manager {
	return backup.NewManager(p.opts.Backup, p.opts.Now())
}
