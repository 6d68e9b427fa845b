// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads the two configuration sources of the CLI.
//
// The user settings file lives in the XDG config dir and only holds
// non-secret preferences. The launch file (docsync.hcl, usually next to the
// scripts) describes which server, principal and folder a project syncs
// with. Passwords are resolved separately, see ResolvePassword.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"docsync/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	Transport string `json:"transport"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Config {
	return Config{LogLevel: "info", LogFormat: "pretty", Transport: "grpc"}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the user settings; missing file returns defaults.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(p)
}

// LoadFrom reads settings from p. Fields absent from the file keep their
// default values.
func LoadFrom(p string) (Config, error) {
	c := Defaults()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes c to p with 0600 permissions.
func SaveTo(p string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
