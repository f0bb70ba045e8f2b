// Package config turns viper settings into validated grantflow configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MemoryDatabase names a private in-memory SQLite database.
const MemoryDatabase = ":memory:"

// ExpandPath expands a leading ~ and any $VAR references in path.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}

// DatabasePath expands path unless it is the in-memory database or a
// file: URI, which SQLite interprets itself.
func DatabasePath(path string) string {
	if path == MemoryDatabase || strings.HasPrefix(path, "file:") {
		return path
	}
	return ExpandPath(path)
}

// Dir returns the grantflow configuration directory under XDG_CONFIG_HOME,
// falling back to ~/.config.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "grantflow"), nil
}
