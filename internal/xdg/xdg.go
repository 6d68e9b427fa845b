// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves XDG Base Directory paths for docsync.
//
// Config holds the user settings file; state holds data the CLI derives
// itself, such as the sync-hash ledger. Both directories are created private
// (0700) on first use and fall back to the conventional locations under the
// home directory when the XDG variables are unset.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "docsync"

// ConfigDir returns $XDG_CONFIG_HOME/docsync, or ~/.config/docsync.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/docsync, or ~/.local/state/docsync.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
