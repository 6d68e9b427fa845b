// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scripts

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileSystem is the local file access the catalog needs.
type FileSystem interface {
	ReadFile(path string) (string, error)
	// WriteFile writes content, creating parent directories as needed.
	WriteFile(path, content string) error
	Exists(path string) bool
	// ReadDir lists the names of the files directly inside dir.
	ReadDir(dir string) ([]string, error)
}

// ScriptExt is the file extension of local scripts.
const ScriptExt = ".js"

// LoadFile reads one local script into a record named after the file stem.
func LoadFile(fs FileSystem, path string) (*Record, error) {
	src, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return &Record{
		Name:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:       path,
		SourceCode: src,
	}, nil
}

// LoadDir reads every *.js file directly inside dir, in name order.
func LoadDir(fs FileSystem, dir string) ([]*Record, error) {
	names, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list scripts in %s: %w", dir, err)
	}
	var records []*Record
	for _, n := range names {
		if !strings.EqualFold(filepath.Ext(n), ScriptExt) {
			continue
		}
		r, err := LoadFile(fs, filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
