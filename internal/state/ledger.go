// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package state persists the sync hashes the conflict check compares
// against, so a script uploaded in one CLI run is still recognised as
// unchanged in the next. Hashes are grouped per server and principal.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"docsync/cli/internal/fsx"
	"docsync/cli/internal/scripts"
	"docsync/cli/internal/xdg"
)

const fileName = "hashes.json"

// Ledger maps scope -> script name -> last sync hash.
type Ledger struct {
	mu     sync.Mutex
	path   string
	Scopes map[string]map[string]string `json:"scopes"`
}

// Scope names the hash namespace of one server and principal.
func Scope(server string, port int, principal string) string {
	return fmt.Sprintf("%s:%d/%s", server, port, principal)
}

// DefaultPath returns $XDG_STATE_HOME/docsync/hashes.json.
func DefaultPath() (string, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Open reads the ledger at path; a missing file yields an empty ledger.
func Open(path string) (*Ledger, error) {
	l := &Ledger{path: path, Scopes: map[string]map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("corrupt sync ledger %s: %w", path, err)
	}
	if l.Scopes == nil {
		l.Scopes = map[string]map[string]string{}
	}
	return l, nil
}

// Get returns the recorded hash of name in scope, or "".
func (l *Ledger) Get(scope, name string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Scopes[scope][name]
}

// Set records hash for name in scope. An empty hash removes the entry.
func (l *Ledger) Set(scope, name, hash string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if hash == "" {
		delete(l.Scopes[scope], name)
		if len(l.Scopes[scope]) == 0 {
			delete(l.Scopes, scope)
		}
		return
	}
	m, ok := l.Scopes[scope]
	if !ok {
		m = map[string]string{}
		l.Scopes[scope] = m
	}
	m[name] = hash
}

// Apply fills LastSyncHash on records that do not carry one yet.
func (l *Ledger) Apply(scope string, records []*scripts.Record) {
	for _, r := range records {
		if r.LastSyncHash == "" {
			r.LastSyncHash = l.Get(scope, r.Name)
		}
	}
}

// Record stores the hashes of records that were synced.
func (l *Ledger) Record(scope string, records []*scripts.Record) {
	for _, r := range records {
		if r.LastSyncHash != "" && !r.Conflict {
			l.Set(scope, r.Name, r.LastSyncHash)
		}
	}
}

// Forget drops all hashes of scope.
func (l *Ledger) Forget(scope string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.Scopes, scope)
}

// Save writes the ledger back to its path with private permissions.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return err
	}
	return fsx.WriteFileAtomic(l.path, b, 0o600)
}
