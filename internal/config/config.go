package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ProjectsDir string `toml:"projects_dir"`
	BackupDir   string `toml:"backup_dir"`
	JournalPath string `toml:"journal_path"`
	LogDir      string `toml:"log_dir"`
}

// Document names the files that make up one project.
type Document struct {
	ContentFile string `toml:"content_file"`
	InfoFile    string `toml:"info_file"`
	// AssetDir is relative to the project directory unless absolute.
	AssetDir string `toml:"asset_dir"`
}

// Timeline holds the timing values used by schedule and edit operations.
type Timeline struct {
	FPS                  float64 `toml:"fps"`
	CrossfadeSeconds     float64 `toml:"crossfade_seconds"`
	TransitionDurationUS int64   `toml:"transition_duration_us"`
	AdjacencyToleranceUS int64   `toml:"adjacency_tolerance_us"`
	FadeDurationUS       int64   `toml:"fade_duration_us"`
	TransitionName       string  `toml:"transition_name"`
	TransitionEffectID   string  `toml:"transition_effect_id"`
	TransitionResourceID string  `toml:"transition_resource_id"`
	FadeInResourceID     string  `toml:"fade_in_resource_id"`
	FadeOutResourceID    string  `toml:"fade_out_resource_id"`
}

// Tracks controls which tracks count as automation-authored.
type Tracks struct {
	AutomationPrefix string   `toml:"automation_prefix"`
	TemplateNames    []string `toml:"template_names"`
}

// Backup controls backup placement and retention.
type Backup struct {
	RetentionCount int `toml:"retention_count"`
}

// Lock controls the per-project advisory lock.
type Lock struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Batch controls parallel processing with --all.
type Batch struct {
	Workers int `toml:"workers"`
}

// Tools names external binaries.
type Tools struct {
	FFprobe string `toml:"ffprobe"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for draftkit.
//
// Configuration sections:
//   - Paths: project root, backup directory, journal database, logs
//   - Document: content/info file names and the asset store directory
//   - Timeline: fps, crossfade and fade timing, transition resources
//   - Tracks: automation prefix and template allow-list for dedupe
//   - Backup: retention
//   - Lock: project lock wait
//   - Batch: worker count for --all
//   - Tools: ffprobe binary
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Document Document `toml:"document"`
	Timeline Timeline `toml:"timeline"`
	Tracks   Tracks   `toml:"tracks"`
	Backup   Backup   `toml:"backup"`
	Lock     Lock     `toml:"lock"`
	Batch    Batch    `toml:"batch"`
	Tools    Tools    `toml:"tools"`
	Logging  Logging  `toml:"logging"`
}

const (
	defaultConfigPath  = "~/.config/draftkit/config.toml"
	projectConfigName  = "draftkit.toml"
	projectsDirEnvName = "DRAFTKIT_PROJECTS_DIR"
)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories draftkit writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, filepath.Dir(c.Paths.JournalPath)}
	if c.Paths.BackupDir != "" {
		dirs = append(dirs, c.Paths.BackupDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ProjectDir resolves a project argument. Absolute paths and paths that
// exist relative to the working directory are used as given; anything else
// is looked up under projects_dir.
func (c *Config) ProjectDir(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("project name is empty")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "~") {
		return expandPath(name)
	}
	if info, err := os.Stat(name); err == nil && info.IsDir() {
		return filepath.Abs(name)
	}
	return filepath.Join(c.Paths.ProjectsDir, name), nil
}

// AssetStoreDir returns the asset store for the project at projectDir.
func (c *Config) AssetStoreDir(projectDir string) string {
	if filepath.IsAbs(c.Document.AssetDir) {
		return filepath.Join(c.Document.AssetDir, filepath.Base(projectDir))
	}
	return filepath.Join(projectDir, c.Document.AssetDir)
}

// FFprobeBinary returns the ffprobe executable name used for asset probing.
func (c *Config) FFprobeBinary() string {
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		return defaultFFprobe
	}
	return c.Tools.FFprobe
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
