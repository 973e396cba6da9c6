package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDocument()
	c.normalizeTracks()
	c.normalizeLogging()
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(projectsDirEnvName); ok && strings.TrimSpace(value) != "" {
		c.Paths.ProjectsDir = strings.TrimSpace(value)
	}
	var err error
	if c.Paths.ProjectsDir, err = expandPath(strings.TrimSpace(c.Paths.ProjectsDir)); err != nil {
		return fmt.Errorf("paths.projects_dir: %w", err)
	}
	if c.Paths.BackupDir, err = expandPath(strings.TrimSpace(c.Paths.BackupDir)); err != nil {
		return fmt.Errorf("paths.backup_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.JournalPath) == "" {
		c.Paths.JournalPath = defaultJournalPath
	}
	if c.Paths.JournalPath, err = expandPath(strings.TrimSpace(c.Paths.JournalPath)); err != nil {
		return fmt.Errorf("paths.journal_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDocument() {
	c.Document.ContentFile = strings.TrimSpace(c.Document.ContentFile)
	c.Document.InfoFile = strings.TrimSpace(c.Document.InfoFile)
	c.Document.AssetDir = strings.TrimSpace(c.Document.AssetDir)
	if c.Document.AssetDir == "" {
		c.Document.AssetDir = defaultAssetDir
	}
	if strings.HasPrefix(c.Document.AssetDir, "~") {
		if expanded, err := expandPath(c.Document.AssetDir); err == nil {
			c.Document.AssetDir = expanded
		}
	} else {
		c.Document.AssetDir = filepath.Clean(c.Document.AssetDir)
	}
}

func (c *Config) normalizeTracks() {
	c.Tracks.AutomationPrefix = strings.TrimSpace(c.Tracks.AutomationPrefix)
	names := c.Tracks.TemplateNames[:0]
	for _, name := range c.Tracks.TemplateNames {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	c.Tracks.TemplateNames = names
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
