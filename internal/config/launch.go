// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"docsync/cli/internal/bridge"
	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/keychain"
	"docsync/cli/internal/session"
)

// DefaultLaunchFile is looked up in the working directory when --config is
// not given.
const DefaultLaunchFile = "docsync.hcl"

// PasswordEnv overrides every stored password when set.
const PasswordEnv = "DOCSYNC_PASSWORD"

// Launch is the decoded launch file. Every attribute is optional at decode
// time; missing login data is reported by ConnectionInfo.Validate so the
// user sees one consistent message.
type Launch struct {
	Server             string `hcl:"server,optional"`
	Port               int    `hcl:"port,optional"`
	Principal          string `hcl:"principal,optional"`
	Username           string `hcl:"username,optional"`
	Password           string `hcl:"password,optional"`
	Timeout            string `hcl:"timeout,optional"`
	Transport          string `hcl:"transport,optional"`
	TLS                bool   `hcl:"tls,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
	SocketPath         string `hcl:"socket_path,optional"`
	ScriptsDir         string `hcl:"scripts_dir,optional"`
	CategoryRoot       string `hcl:"category_root,optional"`
	ConflictMode       *bool  `hcl:"conflict_mode,optional"`

	timeout time.Duration
}

// LoadLaunch parses the launch file at path.
func LoadLaunch(path string) (*Launch, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Hinted(apperr.Configuration,
				fmt.Sprintf("launch file %s not found", path),
				"create docsync.hcl or pass --config")
		}
		return nil, apperr.Wrap(apperr.Configuration, "reading "+path+" failed", err)
	}
	return ParseLaunch(src, path)
}

// ParseLaunch decodes launch file source; filename is used in diagnostics.
func ParseLaunch(src []byte, filename string) (*Launch, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, apperr.Wrap(apperr.Configuration, "failed to parse "+filename, diags)
	}
	var l Launch
	if diags := gohcl.DecodeBody(file.Body, nil, &l); diags.HasErrors() {
		return nil, apperr.Wrap(apperr.Configuration, "failed to decode "+filename, diags)
	}
	if err := l.normalize(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *Launch) normalize() error {
	if l.Timeout != "" {
		d, err := time.ParseDuration(l.Timeout)
		if err != nil || d < 0 {
			return apperr.Hinted(apperr.Configuration,
				fmt.Sprintf("invalid timeout %q", l.Timeout),
				"use a duration such as \"30s\"")
		}
		l.timeout = d
	}
	if l.ScriptsDir == "" {
		l.ScriptsDir = "."
	}
	if _, err := bridge.New(l.Transport, bridge.Options{}); err != nil {
		return err
	}
	return nil
}

// ConflictModeOn reports whether uploads are guarded by the conflict check.
// It defaults to on.
func (l *Launch) ConflictModeOn() bool {
	return l.ConflictMode == nil || *l.ConflictMode
}

// LoginName is the account name the server expects for this launch file.
func (l *Launch) LoginName() string {
	info := session.ConnectionInfo{Username: l.Username, Principal: l.Principal}
	return info.LoginName()
}

// Account is the keychain account holding this launch file's password.
func (l *Launch) Account() string {
	return keychain.Account(l.LoginName(), l.Server, l.Port)
}

// ConnectionInfo builds the session input from the launch file and the
// resolved password.
func (l *Launch) ConnectionInfo(password string) *session.ConnectionInfo {
	return &session.ConnectionInfo{
		Server:    l.Server,
		Port:      l.Port,
		Principal: l.Principal,
		Username:  l.Username,
		Password:  password,
		Timeout:   l.timeout,
	}
}

// Dialer returns the transport selected by the launch file, falling back to
// the user's default transport.
func (l *Launch) Dialer(defaultTransport string) (session.Dialer, error) {
	t := l.Transport
	if t == "" {
		t = defaultTransport
	}
	return bridge.New(t, bridge.Options{
		TLS:                l.TLS,
		InsecureSkipVerify: l.InsecureSkipVerify,
		SocketPath:         l.SocketPath,
	})
}

// PasswordStore is the part of the keychain ResolvePassword needs.
type PasswordStore interface {
	LoadPassword(account string) (string, error)
}

// ResolvePassword picks the password from DOCSYNC_PASSWORD, then the
// keychain, then the launch file. store may be nil when no keychain is
// available. An empty result is not an error; the server decides.
func ResolvePassword(l *Launch, store PasswordStore) string {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw
	}
	if store != nil {
		if pw, err := store.LoadPassword(l.Account()); err == nil && pw != "" {
			return pw
		}
	}
	return l.Password
}
