// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package testutil

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MemFS is an in-memory filesystem keyed by slash-cleaned paths.
type MemFS struct {
	mu    sync.Mutex
	Files map[string]string
}

// NewMemFS returns an empty MemFS.
func NewMemFS() *MemFS { return &MemFS{Files: map[string]string{}} }

func key(p string) string { return path.Clean(filepath.ToSlash(p)) }

func (m *MemFS) ReadFile(p string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Files[key(p)]
	if !ok {
		return "", fmt.Errorf("open %s: %w", p, fs.ErrNotExist)
	}
	return s, nil
}

func (m *MemFS) WriteFile(p, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[key(p)] = content
	return nil
}

func (m *MemFS) Exists(p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Files[key(p)]
	return ok
}

// ReadDir lists file names directly below dir.
func (m *MemFS) ReadDir(dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := key(dir) + "/"
	var names []string
	for k := range m.Files {
		if rest, ok := strings.CutPrefix(k, prefix); ok && !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Paths returns every stored path in sorted order.
func (m *MemFS) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.Files))
	for k := range m.Files {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}
