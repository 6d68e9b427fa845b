// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scripts

import (
	"context"

	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/session"
)

// CheckForConflict decides whether uploading r would overwrite a server-side
// edit made since the last sync. It sets r.Conflict and returns r.
//
// Records outside conflict mode, or forced, are returned unchanged without
// contacting the server. Staleness is detected by content hash because the
// server has no revision counter. A script that vanished from the server,
// or one encrypted without decrypt permission, counts as a conflict.
func CheckForConflict(ctx context.Context, s *session.Session, r *Record) (*Record, error) {
	if !r.ConflictMode || r.ForceUpload {
		return r, nil
	}

	rows, err := s.Call(ctx, downloadMethod, r.Name)
	if err != nil {
		return r, apperr.ForScript(apperr.Operation, "conflict check", r.Name, "fetching server copy failed", err)
	}

	if len(rows) < 2 {
		// Never synced and not on the server: a new script.
		r.Conflict = r.LastSyncHash != ""
		if r.Conflict {
			s.Logger().Info("script deleted on server", "script", r.Name)
		}
		return r, nil
	}

	enc, err := ParseEncryption(rows[1])
	if err != nil {
		r.Conflict = true
		return r, nil
	}
	if enc == Encrypted {
		r.Encrypted = Encrypted
		r.Conflict = true
		return r, nil
	}

	expected := r.LastSyncHash
	if expected == "" {
		// Never synced: only identical content is safe to overwrite.
		expected = Hash(ToServer(r.SourceCode))
	}
	if Hash(rows[0]) != expected {
		r.ServerCode = rows[0]
		r.Conflict = true
		s.Logger().Info("script changed on server since last sync", "script", r.Name)
		return r, nil
	}
	r.Conflict = false
	return r, nil
}
