package config

const (
	defaultProjectsDir          = "~/Movies/drafts"
	defaultJournalPath          = "~/.local/share/draftkit/journal.db"
	defaultLogDir               = "~/.local/share/draftkit/logs"
	defaultContentFile          = "draft_content.json"
	defaultInfoFile             = "draft_info.json"
	defaultAssetDir             = "assets"
	defaultFPS                  = 30.0
	defaultCrossfadeSeconds     = 0.5
	defaultTransitionDurationUS = 500_000
	defaultAdjacencyToleranceUS = 20_000
	defaultFadeDurationUS       = 500_000
	defaultTransitionName       = "Dissolve"
	defaultAutomationPrefix     = "auto_"
	defaultRetentionCount       = 10
	defaultLockTimeoutSeconds   = 10
	defaultBatchWorkers         = 4
	defaultFFprobe              = "ffprobe"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProjectsDir: defaultProjectsDir,
			JournalPath: defaultJournalPath,
			LogDir:      defaultLogDir,
		},
		Document: Document{
			ContentFile: defaultContentFile,
			InfoFile:    defaultInfoFile,
			AssetDir:    defaultAssetDir,
		},
		Timeline: Timeline{
			FPS:                  defaultFPS,
			CrossfadeSeconds:     defaultCrossfadeSeconds,
			TransitionDurationUS: defaultTransitionDurationUS,
			AdjacencyToleranceUS: defaultAdjacencyToleranceUS,
			FadeDurationUS:       defaultFadeDurationUS,
			TransitionName:       defaultTransitionName,
		},
		Tracks: Tracks{
			AutomationPrefix: defaultAutomationPrefix,
		},
		Backup: Backup{
			RetentionCount: defaultRetentionCount,
		},
		Lock: Lock{
			TimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
		Tools: Tools{
			FFprobe: defaultFFprobe,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
