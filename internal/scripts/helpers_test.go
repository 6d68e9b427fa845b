// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scripts

import (
	"context"
	"testing"

	"docsync/cli/internal/session"
	"docsync/cli/internal/testutil"
)

func testInfo() *session.ConnectionInfo {
	return &session.ConnectionInfo{
		Server:    "localhost",
		Port:      11000,
		Principal: "relations",
		Username:  "schreiber",
	}
}

// within runs op inside a full session against srv and fails the test on
// handshake errors. The operation's own error is returned.
func within[T any](t *testing.T, srv *testutil.FakeServer, op func(ctx context.Context, s *session.Session) (T, error)) (T, error) {
	t.Helper()
	return session.Run(context.Background(), session.NewManager(srv), testInfo(), struct{}{},
		func(ctx context.Context, s *session.Session, _ struct{}) (T, error) {
			return op(ctx, s)
		})
}
