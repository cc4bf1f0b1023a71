// Package config resolves groundwork's settings from viper: coding limits
// and file locations.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InMemoryDatabase is the SQLite name of a private in-memory database.
const InMemoryDatabase = ":memory:"

// DatabasePath resolves the configured database location. An empty value
// selects groundwork.db under $XDG_DATA_HOME/groundwork, or
// ~/.local/share/groundwork when XDG_DATA_HOME is unset. A leading ~ and
// $VAR references are expanded.
func DatabasePath(configured string) (string, error) {
	if configured == InMemoryDatabase {
		return configured, nil
	}

	path := os.ExpandEnv(strings.TrimSpace(configured))
	if path == "" {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to locate home directory: %w", err)
			}
			dataHome = filepath.Join(home, ".local", "share")
		}
		path = filepath.Join(dataHome, "groundwork", "groundwork.db")
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}
