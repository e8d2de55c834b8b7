// ABOUTME: XDG-based data directory resolution for flowviz persistent state.
// ABOUTME: Checks XDG_DATA_HOME, falls back to ~/.local/share/flowviz.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultDataDir returns the directory for flowviz persistent state, such as
// the build history database. It checks XDG_DATA_HOME first, then falls back
// to ~/.local/share/flowviz.
func defaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "flowviz"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "flowviz"), nil
}
