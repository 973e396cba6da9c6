package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDocument(); err != nil {
		return err
	}
	if err := c.validateTimeline(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ProjectsDir) == "" {
		return fmt.Errorf("paths.projects_dir must be set (or export %s)", projectsDirEnvName)
	}
	if strings.TrimSpace(c.Paths.JournalPath) == "" {
		return errors.New("paths.journal_path must be set")
	}
	return nil
}

func (c *Config) validateDocument() error {
	for key, value := range map[string]string{
		"document.content_file": c.Document.ContentFile,
		"document.info_file":    c.Document.InfoFile,
	} {
		if value == "" {
			return fmt.Errorf("%s must be set", key)
		}
		if filepath.Base(value) != value {
			return fmt.Errorf("%s must be a file name, got %q", key, value)
		}
	}
	if c.Document.ContentFile == c.Document.InfoFile {
		return errors.New("document.content_file and document.info_file must differ")
	}
	return nil
}

func (c *Config) validateTimeline() error {
	t := c.Timeline
	if t.FPS <= 0 {
		return errors.New("timeline.fps must be positive")
	}
	if t.CrossfadeSeconds < 0 {
		return errors.New("timeline.crossfade_seconds must be >= 0")
	}
	if t.TransitionDurationUS <= 0 {
		return errors.New("timeline.transition_duration_us must be positive")
	}
	if t.AdjacencyToleranceUS < 0 {
		return errors.New("timeline.adjacency_tolerance_us must be >= 0")
	}
	if t.FadeDurationUS <= 0 {
		return errors.New("timeline.fade_duration_us must be positive")
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Backup.RetentionCount < 0 {
		return errors.New("backup.retention_count must be >= 0")
	}
	if c.Lock.TimeoutSeconds < 0 {
		return errors.New("lock.timeout_seconds must be >= 0")
	}
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
