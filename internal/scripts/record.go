// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package scripts implements the script synchronization operations that run
// inside a session: upload with optimistic conflict detection, download,
// remote execution and name listing, each for one record or an ordered batch.
package scripts

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Encryption is the encryption state of a script.
type Encryption int

const (
	// Plain scripts are unencrypted everywhere.
	Plain Encryption = iota
	// Encrypted scripts are encrypted on the server and locally.
	Encrypted
	// Decrypted scripts are encrypted on the server but held decrypted locally.
	Decrypted
)

// String returns the wire form: "false", "true" or "decrypted".
func (e Encryption) String() string {
	switch e {
	case Encrypted:
		return "true"
	case Decrypted:
		return "decrypted"
	default:
		return "false"
	}
}

// ParseEncryption parses the wire form. An empty string is Plain.
func ParseEncryption(s string) (Encryption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false":
		return Plain, nil
	case "true":
		return Encrypted, nil
	case "decrypted":
		return Decrypted, nil
	}
	return Plain, fmt.Errorf("unknown encryption state %q", s)
}

// Record is one script as seen by a sync run. Name is unique per server.
type Record struct {
	Name string

	// Path is the local file of the script. Download writes here unless the
	// record is relocated under CategoryRoot.
	Path         string
	Rename       string // local file stem override on download
	Category     string // reported by the server when supported
	CategoryRoot string // when set, downloads go to CategoryRoot/<category>/

	SourceCode string // local content
	ServerCode string // last observed server content
	Output     string // output of the last run
	Parameters string // optional parameter set sent after upload

	// LastSyncHash is the content hash captured when local and server copies
	// were last known to be equal.
	LastSyncHash string
	Conflict     bool
	ForceUpload  bool
	ConflictMode bool

	Encrypted Encryption
}

// LocalPath returns where a download of r is written, before any category
// relocation.
func (r *Record) LocalPath() string {
	if r.Rename == "" {
		return r.Path
	}
	ext := filepath.Ext(r.Path)
	if ext == "" {
		ext = ".js"
	}
	return filepath.Join(filepath.Dir(r.Path), r.Rename+ext)
}

// Names returns the names of records, in order.
func Names(records []*Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}
