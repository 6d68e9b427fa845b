// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package grpcclient

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/session"
)

// stubServer answers the Session service through an unknown-service handler
// so no generated code is needed.
type stubServer struct {
	mu      sync.Mutex
	methods []string
	tokens  []string
	reply   func(method string, req map[string]any) (map[string]any, error)
}

func (s *stubServer) handle(_ any, stream grpc.ServerStream) error {
	method, _ := grpc.MethodFromServerStream(stream)
	in := &structpb.Struct{}
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	s.mu.Lock()
	s.methods = append(s.methods, method)
	if md, ok := metadata.FromIncomingContext(stream.Context()); ok {
		s.tokens = append(s.tokens, md.Get(SessionHeader)...)
	}
	s.mu.Unlock()

	if method == changeUserMethod {
		if err := stream.SetHeader(metadata.Pairs(SessionHeader, "tok-1")); err != nil {
			return err
		}
	}
	reply, err := s.reply(method, in.AsMap())
	if err != nil {
		return err
	}
	out, err := structpb.NewStruct(reply)
	if err != nil {
		return err
	}
	return stream.SendMsg(out)
}

func startStub(t *testing.T, stub *stubServer) session.Endpoint {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := grpc.NewServer(grpc.UnknownServiceHandler(stub.handle))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	host, port, _ := net.SplitHostPort(lis.Addr().String())
	p, _ := strconv.Atoi(port)
	return session.Endpoint{Host: host, Port: p, Timeout: 5 * time.Second}
}

func TestRoundTrip(t *testing.T) {
	stub := &stubServer{reply: func(method string, req map[string]any) (map[string]any, error) {
		switch method {
		case changeUserMethod:
			if req["login"] != "schreiber.relations" || req["credential"] != "secret" {
				return nil, status.Error(codes.Unauthenticated, "invalid user or password")
			}
			return map[string]any{"id": req["id"], "user_id": "u-42"}, nil
		case changePrincipalMethod:
			return map[string]any{"id": req["id"]}, nil
		case callMethod:
			args := req["args"].([]any)
			return map[string]any{"id": req["id"], "rows": append([]any{req["method"]}, args...)}, nil
		}
		return nil, status.Error(codes.Unimplemented, method)
	}}
	ep := startStub(t, stub)
	ctx := context.Background()

	c, err := (&Dialer{}).Dial(ctx, ep)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	uid, err := c.ChangeUser(ctx, "schreiber.relations", "secret")
	if err != nil || uid != "u-42" {
		t.Fatalf("ChangeUser() = %q, %v", uid, err)
	}
	if err := c.ChangePrincipal(ctx, "relations"); err != nil {
		t.Fatalf("ChangePrincipal() error = %v", err)
	}
	rows, err := c.Call(ctx, "PortalScript.runScript", "report")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if diff := cmp.Diff([]string{"PortalScript.runScript", "report"}, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if diff := cmp.Diff([]string{changeUserMethod, changePrincipalMethod, callMethod}, stub.methods); diff != "" {
		t.Errorf("methods mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"tok-1", "tok-1"}, stub.tokens); diff != "" {
		t.Errorf("session token not forwarded (-want +got):\n%s", diff)
	}
}

func replyWith(out map[string]any, err error) func(string, map[string]any) (map[string]any, error) {
	return func(string, map[string]any) (map[string]any, error) { return out, err }
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		reply func(string, map[string]any) (map[string]any, error)
		want  apperr.Kind
	}{
		{
			name:  "unauthenticated",
			reply: replyWith(nil, status.Error(codes.Unauthenticated, "no")),
			want:  apperr.Authentication,
		},
		{
			name:  "unavailable",
			reply: replyWith(nil, status.Error(codes.Unavailable, "down")),
			want:  apperr.Connectivity,
		},
		{
			name:  "server error field",
			reply: replyWith(map[string]any{"error": "unknown method"}, nil),
			want:  apperr.Operation,
		},
		{
			name:  "malformed rows",
			reply: replyWith(map[string]any{"rows": "x"}, nil),
			want:  apperr.Operation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := startStub(t, &stubServer{reply: tt.reply})
			c, err := (&Dialer{}).Dial(context.Background(), ep)
			if err != nil {
				t.Fatalf("Dial() error = %v", err)
			}
			defer c.Close()

			_, err = c.Call(context.Background(), "PartnerNet.getVersionNo")
			if got := apperr.KindOf(err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}
}

func TestDialUnreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().(*net.TCPAddr)
	lis.Close()

	_, err = (&Dialer{}).Dial(context.Background(), session.Endpoint{Host: "127.0.0.1", Port: addr.Port, Timeout: 300 * time.Millisecond})
	if !apperr.Is(err, apperr.Connectivity) {
		t.Fatalf("Dial() error = %v, want connectivity error", err)
	}
}
