// Package storage persists the opening book, imported games and engine
// preferences in BadgerDB.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "tigertooth"

// dataBase picks the directory the application directory is created in:
// TIGERTOOTH_HOME itself, else XDG_DATA_HOME, else ~/.local/share on Unix and
// the user config directory (Application Support, %AppData%) elsewhere.
func dataBase() (dir string, app bool, err error) {
	if home := os.Getenv("TIGERTOOTH_HOME"); home != "" {
		return home, true, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg, false, nil
	}
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		dir, err = os.UserConfigDir()
		return dir, false, err
	}
	home, err := os.UserHomeDir()
	return filepath.Join(home, ".local", "share"), false, err
}

// GetDataDir returns the application data directory, creating it if needed.
func GetDataDir() (string, error) {
	base, app, err := dataBase()
	if err != nil {
		return "", fmt.Errorf("locate data dir: %w", err)
	}
	if !app {
		base = filepath.Join(base, appName)
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return base, nil
}

// GetDatabaseDir returns the directory holding the BadgerDB files.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", fmt.Errorf("create database dir: %w", err)
	}
	return dbDir, nil
}
