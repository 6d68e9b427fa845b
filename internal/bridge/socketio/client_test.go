// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package socketio

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/session"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []any
		wantRows []string
		wantKind apperr.Kind
	}{
		{name: "rows", data: []any{map[string]any{"id": "1", "rows": []any{"8046"}}}, wantRows: []string{"8046"}},
		{name: "no payload", data: nil, wantKind: apperr.Operation},
		{name: "wrong payload", data: []any{"8046"}, wantKind: apperr.Operation},
		{name: "server error", data: []any{map[string]any{"error": "denied"}}, wantKind: apperr.Operation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := decode(tt.data)
			if got := apperr.KindOf(res.err); got != tt.wantKind {
				t.Fatalf("decode() kind = %q, want %q (err %v)", got, tt.wantKind, res.err)
			}
			if diff := cmp.Diff(tt.wantRows, res.resp.Rows); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDialUnreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := lis.Addr().(*net.TCPAddr).Port
	lis.Close()

	_, err = (&Dialer{}).Dial(context.Background(), session.Endpoint{Host: "127.0.0.1", Port: port, Timeout: 500 * time.Millisecond})
	if !apperr.Is(err, apperr.Connectivity) {
		t.Fatalf("Dial() error = %v, want connectivity error", err)
	}
}

// fakeSocket answers requests from rows, or stays silent when rows is nil.
type fakeSocket struct {
	mu        sync.Mutex
	rows      []any
	listeners map[types.EventName][]types.Listener
}

func newFakeSocket(rows []any) *fakeSocket {
	return &fakeSocket{rows: rows, listeners: map[types.EventName][]types.Listener{}}
}

func (f *fakeSocket) Connected() bool { return true }

func (f *fakeSocket) Once(ev types.EventName, l ...types.Listener) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners[ev] = append(f.listeners[ev], l...)
	return nil
}

func (f *fakeSocket) Emit(_ string, args ...any) error {
	if f.rows == nil {
		return nil
	}
	req := args[0].(map[string]any)
	ev := types.EventName(responsePrefix + req["id"].(string))
	f.mu.Lock()
	ls := f.listeners[ev]
	delete(f.listeners, ev)
	f.mu.Unlock()
	for _, l := range ls {
		l(map[string]any{"id": req["id"], "rows": f.rows})
	}
	return nil
}

func (f *fakeSocket) RemoveAllListeners(ev types.EventName) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.listeners[ev]
	delete(f.listeners, ev)
	return ok
}

func (f *fakeSocket) Disconnect() *socket.Socket { return nil }

func (f *fakeSocket) pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func TestCallAnswered(t *testing.T) {
	fs := newFakeSocket([]any{"8046"})
	c := &conn{io: fs, timeout: time.Second}

	rows, err := c.Call(context.Background(), "PartnerNet.getVersionNo")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if diff := cmp.Diff([]string{"8046"}, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if n := fs.pending(); n != 0 {
		t.Errorf("pending listeners = %d, want 0", n)
	}
}

func TestCallTimeoutRemovesResponseListener(t *testing.T) {
	fs := newFakeSocket(nil)
	c := &conn{io: fs, timeout: 20 * time.Millisecond}

	for i := 0; i < 3; i++ {
		if _, err := c.Call(context.Background(), "PortalScript.getScriptNames"); !apperr.Is(err, apperr.Connectivity) {
			t.Fatalf("Call() error = %v, want connectivity error", err)
		}
	}
	if n := fs.pending(); n != 0 {
		t.Errorf("pending listeners = %d after timeouts, want 0", n)
	}
}
