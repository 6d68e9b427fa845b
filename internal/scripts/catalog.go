// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scripts

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/session"
)

const (
	uploadMethod        = "PortalScript.uploadScript"
	downloadMethod      = "PortalScript.downloadScript"
	runMethod           = "PortalScript.runScript"
	namesMethod         = "PortalScript.getScriptNames"
	setParametersMethod = "PortalScript.setScriptParameters"
	fileTypesMethod     = "PortalScript.getFileTypeNames"
)

// Catalog holds the leaf operations. Its methods have the shape of
// session.Operation and can be passed to session.Run directly.
type Catalog struct {
	fs FileSystem
}

// NewCatalog returns a catalog writing downloads through fs.
func NewCatalog(fs FileSystem) *Catalog {
	return &Catalog{fs: fs}
}

// rowError returns the error text the server embeds in row 0 of a result
// that should otherwise be empty.
func rowError(rows []string) string {
	if len(rows) == 0 {
		return ""
	}
	return strings.TrimSpace(rows[0])
}

// Upload sends r to the server unless the conflict check blocks it. A
// conflict is not an error: r comes back with Conflict set and nothing is
// overwritten.
func (c *Catalog) Upload(ctx context.Context, s *session.Session, r *Record) (*Record, error) {
	if r.ConflictMode && !r.ForceUpload {
		if _, err := CheckForConflict(ctx, s, r); err != nil {
			return r, err
		}
		if r.Conflict {
			s.Logger().Info("upload skipped because of conflict", "script", r.Name)
			return r, nil
		}
	}

	source := ToServer(r.SourceCode)
	if strings.TrimSpace(source) == "" {
		return r, apperr.ForScript(apperr.Operation, "upload", r.Name, "missing source code", nil)
	}

	rows, err := s.Call(ctx, uploadMethod, r.Name, source, r.Encrypted.String())
	if err != nil {
		return r, apperr.ForScript(apperr.Operation, "upload", r.Name, "upload failed", err)
	}
	if msg := rowError(rows); msg != "" {
		return r, apperr.ForScript(apperr.Operation, "upload", r.Name, msg, nil)
	}

	r.ServerCode = source
	r.Conflict = false
	if r.ConflictMode {
		r.LastSyncHash = Hash(source)
	}

	if r.Parameters != "" {
		if err := c.setParameters(ctx, s, r); err != nil {
			s.Warn("parameters of "+r.Name+" were not set", "error", err)
		}
	}
	s.Logger().Debug("uploaded", "script", r.Name, "encrypted", r.Encrypted.String())
	return r, nil
}

func (c *Catalog) setParameters(ctx context.Context, s *session.Session, r *Record) error {
	rows, err := s.Call(ctx, setParametersMethod, r.Name, r.Parameters)
	if err != nil {
		return err
	}
	if msg := rowError(rows); msg != "" {
		return apperr.ForScript(apperr.Operation, "set parameters", r.Name, msg, nil)
	}
	return nil
}

// Download fetches r from the server and writes it to its local path.
func (c *Catalog) Download(ctx context.Context, s *session.Session, r *Record) (*Record, error) {
	if r.Path == "" {
		return r, apperr.ForScript(apperr.Operation, "download", r.Name, "local path missing", nil)
	}

	rows, err := s.Call(ctx, downloadMethod, r.Name)
	if err != nil {
		return r, apperr.ForScript(apperr.Operation, "download", r.Name, "download failed", err)
	}
	switch len(rows) {
	case 0:
		return r, apperr.ForScript(apperr.Operation, "download", r.Name, "script not found", nil)
	case 1:
		msg := rowError(rows)
		if msg == "" {
			msg = "script not found"
		}
		return r, apperr.ForScript(apperr.Operation, "download", r.Name, msg, nil)
	}

	enc, err := ParseEncryption(rows[1])
	if err != nil {
		return r, apperr.ForScript(apperr.Operation, "download", r.Name, "unexpected server response", err)
	}
	if enc == Encrypted {
		return r, apperr.ErrDecryptPermission.WithScript("download", r.Name)
	}

	dest, err := c.destination(s, r, rows)
	if err != nil {
		return r, err
	}
	local := ToLocal(rows[0])
	if err := c.fs.WriteFile(dest, local); err != nil {
		return r, apperr.ForScript(apperr.Operation, "download", r.Name, "writing "+dest+" failed", err)
	}

	r.Path = dest
	r.SourceCode = local
	r.ServerCode = rows[0]
	r.Encrypted = enc
	if r.ConflictMode {
		r.LastSyncHash = Hash(rows[0])
		r.Conflict = false
	}
	s.Logger().Debug("downloaded", "script", r.Name, "path", dest)
	return r, nil
}

// destination resolves the download path, relocating under the category
// folder when the record asks for it and the server reports categories.
// A category must name a single folder below the category root.
func (c *Catalog) destination(s *session.Session, r *Record, rows []string) (string, error) {
	dest := r.LocalPath()
	if !s.Supports(session.CategoryMinVersion) {
		if r.CategoryRoot != "" {
			s.Warn(fmt.Sprintf("categories need server version %s or newer; %s is written without category folder",
				session.CategoryMinVersion, r.Name), "version", s.Info().ServerVersion)
		}
		return dest, nil
	}
	if len(rows) > 2 {
		r.Category = strings.TrimSpace(rows[2])
	}
	if r.CategoryRoot != "" && r.Category != "" {
		if !IsPlainName(r.Category) {
			return "", apperr.ForScript(apperr.Operation, "download", r.Name,
				fmt.Sprintf("server category %q is not a plain folder name", r.Category), nil)
		}
		dest = filepath.Join(r.CategoryRoot, r.Category, filepath.Base(dest))
	}
	return dest, nil
}

// IsPlainName reports whether name, as reported by the server, can be used
// as a single path element without leaving its parent folder.
func IsPlainName(name string) bool {
	return name != "" && name != "." && filepath.IsLocal(name) && !strings.ContainsAny(name, `/\`)
}

// Run executes r on the server and stores the output lines in r.Output.
func (c *Catalog) Run(ctx context.Context, s *session.Session, r *Record) (*Record, error) {
	rows, err := s.Call(ctx, runMethod, r.Name)
	if err != nil {
		return r, apperr.ForScript(apperr.Operation, "run", r.Name, "run failed", err)
	}
	if len(rows) == 0 {
		return r, apperr.ForScript(apperr.Operation, "run", r.Name, "script not found", nil)
	}
	r.Output = strings.Join(rows, LineSeparator())
	return r, nil
}

// ListNames returns the names of all scripts on the server.
func (c *Catalog) ListNames(ctx context.Context, s *session.Session, _ struct{}) ([]string, error) {
	rows, err := s.Call(ctx, namesMethod)
	if err != nil {
		return nil, apperr.Wrap(apperr.Operation, "listing script names failed", err)
	}
	return rows, nil
}

// ListFileTypes returns the file type names used for typed field metadata.
// Servers older than FieldTypesMinVersion yield an empty list and a warning.
func (c *Catalog) ListFileTypes(ctx context.Context, s *session.Session, _ struct{}) ([]string, error) {
	if !s.Supports(session.FieldTypesMinVersion) {
		s.Warn(fmt.Sprintf("file type metadata needs server version %s or newer", session.FieldTypesMinVersion),
			"version", s.Info().ServerVersion)
		return nil, nil
	}
	rows, err := s.Call(ctx, fileTypesMethod)
	if err != nil {
		return nil, apperr.Wrap(apperr.Operation, "listing file types failed", err)
	}
	return rows, nil
}
