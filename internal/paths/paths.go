// Package paths resolves the daemon's on-disk layout under ~/.parley.
package paths

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.parley, or $PARLEY_HOME when set.
func BaseDir() string {
	if dir := os.Getenv("PARLEY_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".parley")
}

// ConfigPath returns the config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// LockPath returns the daemon run lock file path.
func LockPath() string {
	return filepath.Join(BaseDir(), "LOCK")
}

// LogDir returns the log directory.
func LogDir() string {
	return filepath.Join(BaseDir(), "logs")
}

// LogPath returns the daemon log file path.
func LogPath() string {
	return filepath.Join(LogDir(), "parleyd.log")
}

// EnsureDirs creates the state directory tree with proper permissions.
func EnsureDirs() error {
	dirs := []string{
		BaseDir(),
		LogDir(),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
