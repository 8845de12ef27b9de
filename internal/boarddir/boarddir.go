// Package boarddir provides constants and utilities for the .taskboard directory structure.
package boarddir

import "path/filepath"

const (
	// Dir is the name of the taskboard state directory.
	Dir = ".taskboard"

	// DBFile is the SQLite database file name used by the sqlite store backend.
	DBFile = "taskboard.db"

	// DefaultConfigFile is the config file name (inside .taskboard).
	DefaultConfigFile = "taskboard.toml"

	// DefaultMirrorFile is the companion's local copy of the device task list.
	DefaultMirrorFile = "tasks.json"

	// StoreSubdir holds the device blob store.
	StoreSubdir = "store"

	// LogSubdir holds JSONL traffic logs.
	LogSubdir = "logs"
)

// BlobFile returns the file name used by the file store backend for key.
func BlobFile(key string) string {
	return key + ".json"
}

// DirPath returns the full path to the .taskboard directory within base.
func DirPath(base string) string {
	if base == "." || base == "" {
		return Dir
	}
	return filepath.Join(base, Dir)
}

// StorePath returns the default store directory within base.
func StorePath(base string) string {
	return filepath.Join(DirPath(base), StoreSubdir)
}

// MirrorPath returns the default companion mirror file within base.
func MirrorPath(base string) string {
	return filepath.Join(DirPath(base), DefaultMirrorFile)
}

// ConfigPath returns the config file path within base.
func ConfigPath(base string) string {
	return filepath.Join(DirPath(base), DefaultConfigFile)
}

// LogPath returns the default log directory within base.
func LogPath(base string) string {
	return filepath.Join(DirPath(base), LogSubdir)
}
