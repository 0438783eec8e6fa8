package app

import (
	"os"
	"slices"

	"gdnvim/internal/config"
	"gdnvim/internal/logger"
)

// Options configures the application. The zero value uses the
// per-user settings file, the working directory as project root, and
// stderr for diagnostics.
type Options struct {
	// ConfigPath is the settings file to load and watch. Empty uses
	// the per-user default location.
	ConfigPath string

	// EnginePath overrides the configured engine executable, above
	// both the settings file and the environment.
	EnginePath string

	// Root is the project root: the engine's working directory, the
	// base res:// paths resolve against, and the language server
	// workspace. Empty uses the working directory.
	Root string

	// Files are opened through the host after startup, in order, the
	// last one focused.
	Files []string

	// Debug forces debug-level logging regardless of the verbose
	// setting.
	Debug bool

	// LogPath appends diagnostics to a file instead of stderr.
	LogPath string

	// Version is the host plugin version reported to the engine and
	// shown by :version.
	Version string
}

// normalize fills the defaulted fields in place.
func (o *Options) normalize() {
	if o.ConfigPath == "" {
		o.ConfigPath = config.DefaultPath()
	}
	if o.Root == "" {
		if wd, err := os.Getwd(); err == nil {
			o.Root = wd
		}
	}
	if o.Version == "" {
		o.Version = "dev"
	}
}

// effective layers the command-line overrides onto loaded settings.
func (a *Application) effective(s config.Settings) config.Settings {
	if a.opts.EnginePath != "" {
		s.Engine.Path = a.opts.EnginePath
	}
	return s
}

// logLevel is the threshold the options and settings ask for.
func (a *Application) logLevel(s config.Settings) logger.Level {
	if a.opts.Debug || s.Log.Verbose {
		return logger.LevelDebug
	}
	return logger.LevelInfo
}

// engineChanged reports whether the engine spawn configuration
// differs between two settings.
func engineChanged(prev, next config.EngineConfig) bool {
	return prev.Path != next.Path ||
		prev.Clean != next.Clean ||
		!slices.Equal(prev.ExtraArgs, next.ExtraArgs)
}
