// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scripts

import (
	"context"
	"testing"

	"docsync/cli/internal/session"
	"docsync/cli/internal/testutil"
)

func TestCheckForConflictOptOut(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{name: "conflict mode off", rec: Record{Name: "a", LastSyncHash: "stale"}},
		{name: "forced", rec: Record{Name: "a", LastSyncHash: "stale", ConflictMode: true, ForceUpload: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewFakeServer()
			srv.Put("a", "changed on server")
			rec := tt.rec

			got, err := within(t, srv, func(ctx context.Context, s *session.Session) (*Record, error) {
				return CheckForConflict(ctx, s, &rec)
			})
			if err != nil {
				t.Fatalf("CheckForConflict() error = %v", err)
			}
			if got.Conflict {
				t.Errorf("Conflict = true, want false")
			}
			if n := srv.CallCount(downloadMethod); n != 0 {
				t.Errorf("server contacted %d times, want 0", n)
			}
		})
	}
}

func TestCheckForConflict(t *testing.T) {
	synced := "return 1;"

	tests := []struct {
		name         string
		setup        func(*testutil.FakeServer)
		rec          Record
		wantConflict bool
		wantServer   string
		wantEnc      Encryption
	}{
		{
			name:  "unchanged",
			setup: func(f *testutil.FakeServer) { f.Put("a", synced) },
			rec:   Record{Name: "a", SourceCode: "return 2;", LastSyncHash: Hash(synced), ConflictMode: true},
		},
		{
			name:  "unchanged with bom on server",
			setup: func(f *testutil.FakeServer) { f.Put("a", "\ufeff"+synced) },
			rec:   Record{Name: "a", LastSyncHash: Hash(synced), ConflictMode: true},
		},
		{
			name:         "edited on server",
			setup:        func(f *testutil.FakeServer) { f.Put("a", "return 3;") },
			rec:          Record{Name: "a", LastSyncHash: Hash(synced), ConflictMode: true},
			wantConflict: true,
			wantServer:   "return 3;",
		},
		{
			name:         "deleted on server",
			setup:        func(f *testutil.FakeServer) {},
			rec:          Record{Name: "a", LastSyncHash: Hash(synced), ConflictMode: true},
			wantConflict: true,
		},
		{
			name: "encrypted without permission",
			setup: func(f *testutil.FakeServer) {
				f.Scripts["a"] = &testutil.Script{Source: "xxxx", Encrypted: "true"}
			},
			rec:          Record{Name: "a", LastSyncHash: Hash(synced), ConflictMode: true},
			wantConflict: true,
			wantEnc:      Encrypted,
		},
		{
			name: "decrypted copy compares by content",
			setup: func(f *testutil.FakeServer) {
				f.Scripts["a"] = &testutil.Script{Source: synced, Encrypted: "decrypted"}
			},
			rec:     Record{Name: "a", LastSyncHash: Hash(synced), ConflictMode: true, Encrypted: Decrypted},
			wantEnc: Decrypted,
		},
		{
			name:  "never synced, new script",
			setup: func(f *testutil.FakeServer) {},
			rec:   Record{Name: "a", SourceCode: "return 'hi';", ConflictMode: true},
		},
		{
			name:  "never synced, identical server copy",
			setup: func(f *testutil.FakeServer) { f.Put("a", "#import \"lib\"\nreturn 'hi';") },
			rec:   Record{Name: "a", SourceCode: "//#import \"lib\"\nreturn 'hi';", ConflictMode: true},
		},
		{
			name:         "never synced, different server copy",
			setup:        func(f *testutil.FakeServer) { f.Put("a", "return 'other';") },
			rec:          Record{Name: "a", SourceCode: "return 'hi';", ConflictMode: true},
			wantConflict: true,
			wantServer:   "return 'other';",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewFakeServer()
			tt.setup(srv)
			rec := tt.rec

			got, err := within(t, srv, func(ctx context.Context, s *session.Session) (*Record, error) {
				return CheckForConflict(ctx, s, &rec)
			})
			if err != nil {
				t.Fatalf("CheckForConflict() error = %v", err)
			}
			if got.Conflict != tt.wantConflict {
				t.Errorf("Conflict = %v, want %v", got.Conflict, tt.wantConflict)
			}
			if got.ServerCode != tt.wantServer {
				t.Errorf("ServerCode = %q, want %q", got.ServerCode, tt.wantServer)
			}
			if got.Encrypted != tt.wantEnc {
				t.Errorf("Encrypted = %v, want %v", got.Encrypted, tt.wantEnc)
			}
		})
	}
}

func TestCheckForConflictIsIdempotent(t *testing.T) {
	srv := testutil.NewFakeServer()
	srv.Put("a", "return 1;")
	rec := &Record{Name: "a", LastSyncHash: Hash("return 1;"), ConflictMode: true}

	results, err := within(t, srv, func(ctx context.Context, s *session.Session) ([]bool, error) {
		var out []bool
		for i := 0; i < 2; i++ {
			r, err := CheckForConflict(ctx, s, rec)
			if err != nil {
				return out, err
			}
			out = append(out, r.Conflict)
		}
		return out, nil
	})
	if err != nil {
		t.Fatalf("CheckForConflict() error = %v", err)
	}
	if len(results) != 2 || results[0] || results[1] {
		t.Fatalf("conflicts = %v, want [false false]", results)
	}
}
