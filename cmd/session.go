// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"

	"docsync/cli/internal/config"
	"docsync/cli/internal/fsx"
	"docsync/cli/internal/keychain"
	"docsync/cli/internal/scripts"
	"docsync/cli/internal/session"
	"docsync/cli/internal/state"
)

// project bundles what a server command needs: user settings, the launch
// file and the on-disk filesystem.
type project struct {
	settings config.Config
	launch   *config.Launch
	fs       fsx.OS
	// password overrides the resolved password, used by login.
	password string
}

func loadSettings() config.Config {
	c, err := config.Load()
	if err != nil {
		logger.Warn("using default settings", "error", err)
		return config.Defaults()
	}
	return c
}

func loadProject() (*project, error) {
	path := configPath
	if path == "" {
		path = config.DefaultLaunchFile
	}
	l, err := config.LoadLaunch(path)
	if err != nil {
		return nil, err
	}
	// Relative folders in the launch file are relative to the file itself.
	base := filepath.Dir(path)
	if !filepath.IsAbs(l.ScriptsDir) {
		l.ScriptsDir = filepath.Join(base, l.ScriptsDir)
	}
	if l.CategoryRoot != "" && !filepath.IsAbs(l.CategoryRoot) {
		l.CategoryRoot = filepath.Join(base, l.CategoryRoot)
	}
	logger.Debug("launch file loaded", "path", path, "server", l.Server, "port", l.Port, "principal", l.Principal)
	return &project{settings: loadSettings(), launch: l}, nil
}

func (p *project) catalog() *scripts.Catalog {
	return scripts.NewCatalog(p.fs)
}

func (p *project) scope() string {
	return state.Scope(p.launch.Server, p.launch.Port, p.launch.Principal)
}

// ledger opens the sync-hash ledger. A broken ledger only disables the
// cross-run conflict history, so callers may continue with nil.
func (p *project) ledger() *state.Ledger {
	path, err := state.DefaultPath()
	if err != nil {
		logger.Warn("sync history unavailable", "error", err)
		return nil
	}
	l, err := state.Open(path)
	if err != nil {
		logger.Warn("sync history unavailable", "error", err)
		return nil
	}
	return l
}

// passwordStore returns the keychain, or nil when the OS has none.
func passwordStore() config.PasswordStore {
	km, err := keychain.GetManager()
	if err != nil {
		logger.Debug("keychain unavailable", "error", err)
		return nil
	}
	return km
}

// runSession opens a session for the project, runs op inside it and prints
// any warning the session recorded.
func runSession[P, T any](ctx context.Context, p *project, title string, params P, op session.Operation[P, T]) (T, *session.ConnectionInfo, error) {
	var zero T
	dialer, err := p.launch.Dialer(p.settings.Transport)
	if err != nil {
		return zero, nil, err
	}
	pw := p.password
	if pw == "" {
		pw = config.ResolvePassword(p.launch, passwordStore())
	}
	info := p.launch.ConnectionInfo(pw)
	m := session.NewManager(dialer, session.WithLogger(logger))

	stop := startSpinner(os.Stderr, title)
	res, err := session.Run(ctx, m, info, params, op)
	stop()

	if info.LastWarning != "" {
		pterm.Warning.Println(info.LastWarning)
	}
	return res, info, err
}
