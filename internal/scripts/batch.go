// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scripts

import (
	"context"
	"fmt"
	"path/filepath"

	"docsync/cli/internal/session"
)

// LeafFunc applies one leaf operation to one record.
type LeafFunc func(ctx context.Context, s *session.Session, r *Record) (*Record, error)

// FailurePolicy decides what a per-record error does to the rest of a batch.
type FailurePolicy int

const (
	// Abort stops the batch at the first error and returns it.
	Abort FailurePolicy = iota
	// Skip logs the error, drops the record and continues.
	Skip
)

// ExecuteBatch applies leaf to records strictly in order; record i+1 starts
// only after record i has settled. It returns the records produced so far.
// Under Abort the first error ends the batch and is returned along with the
// records already processed, which are not rolled back.
func ExecuteBatch(ctx context.Context, s *session.Session, records []*Record, leaf LeafFunc, policy FailurePolicy) ([]*Record, error) {
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := leaf(ctx, s, r)
		if err != nil {
			if policy == Skip {
				s.Logger().Warn("skipping script", "script", r.Name, "error", err)
				continue
			}
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// UploadAll uploads records in order. Conflicted records are returned with
// Conflict set; any other failure aborts the batch.
func (c *Catalog) UploadAll(ctx context.Context, s *session.Session, records []*Record) ([]*Record, error) {
	return ExecuteBatch(ctx, s, records, c.Upload, Abort)
}

// DownloadAll downloads records in order, skipping the ones that fail so a
// single missing or renamed script does not block the rest.
func (c *Catalog) DownloadAll(ctx context.Context, s *session.Session, records []*Record) ([]*Record, error) {
	return ExecuteBatch(ctx, s, records, c.Download, Skip)
}

// RunAll runs records in order and aborts on the first failure.
func (c *Catalog) RunAll(ctx context.Context, s *session.Session, records []*Record) ([]*Record, error) {
	return ExecuteBatch(ctx, s, records, c.Run, Abort)
}

// Target describes where a full server export is written.
type Target struct {
	Dir          string
	CategoryRoot string
	ConflictMode bool
}

// DownloadServer lists every script on the server and downloads them into
// t.Dir within the same session.
func (c *Catalog) DownloadServer(ctx context.Context, s *session.Session, t Target) ([]*Record, error) {
	names, err := c.ListNames(ctx, s, struct{}{})
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(names))
	for _, n := range names {
		if !IsPlainName(n) {
			s.Warn(fmt.Sprintf("skipping server script %q: name is not a plain file name", n))
			continue
		}
		records = append(records, &Record{
			Name:         n,
			Path:         filepath.Join(t.Dir, n+ScriptExt),
			CategoryRoot: t.CategoryRoot,
			ConflictMode: t.ConflictMode,
		})
	}
	return c.DownloadAll(ctx, s, records)
}
