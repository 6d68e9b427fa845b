// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcclient provides a gRPC-backed session transport. Every remote
// operation is a unary call on the docsync.v1.Session service carrying a
// protobuf Struct; the login call returns a session token in the response
// header which is attached to every later call.
package grpcclient

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"docsync/cli/internal/bridge/model"
	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/session"
)

const (
	changeUserMethod      = "/docsync.v1.Session/ChangeUser"
	changePrincipalMethod = "/docsync.v1.Session/ChangePrincipal"
	callMethod            = "/docsync.v1.Session/Call"

	// SessionHeader carries the token issued by ChangeUser.
	SessionHeader = "x-docsync-session"

	defaultDialTimeout = 10 * time.Second
)

// Dialer opens gRPC connections to the application server.
type Dialer struct {
	// TLS enables transport security with the endpoint host as server name.
	TLS bool
	// InsecureSkipVerify disables certificate verification when TLS is on.
	InsecureSkipVerify bool
}

// Dial implements session.Dialer. It blocks until the connection is ready or
// the endpoint timeout expires.
func (d *Dialer) Dial(ctx context.Context, ep session.Endpoint) (session.Conn, error) {
	target := net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))

	creds := insecure.NewCredentials()
	if d.TLS {
		creds = credentials.NewTLS(&tls.Config{
			ServerName:         ep.Host,
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: d.InsecureSkipVerify,
		})
	}

	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cc, err := grpc.DialContext(dctx, target, grpc.WithTransportCredentials(creds), grpc.WithBlock())
	if err != nil {
		return nil, apperr.Wrap(apperr.Connectivity, "cannot reach "+target, err)
	}
	return &conn{cc: cc}, nil
}

type conn struct {
	cc    *grpc.ClientConn
	token string
	seq   atomic.Uint64
}

func (c *conn) ChangeUser(ctx context.Context, login, credential string) (string, error) {
	var header metadata.MD
	resp, err := c.invoke(ctx, changeUserMethod, model.Request{
		Kind:       model.KindChangeUser,
		Login:      login,
		Credential: credential,
	}, grpc.Header(&header))
	if err != nil {
		return "", err
	}
	if v := header.Get(SessionHeader); len(v) > 0 {
		c.token = v[0]
	}
	return resp.UserID, nil
}

func (c *conn) ChangePrincipal(ctx context.Context, principal string) error {
	_, err := c.invoke(ctx, changePrincipalMethod, model.Request{
		Kind:      model.KindChangePrincipal,
		Principal: principal,
	})
	return err
}

func (c *conn) Call(ctx context.Context, method string, args ...string) ([]string, error) {
	resp, err := c.invoke(ctx, callMethod, model.Request{
		Kind:   model.KindCall,
		Method: method,
		Args:   args,
	})
	if err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (c *conn) Close() error {
	c.token = ""
	return c.cc.Close()
}

func (c *conn) invoke(ctx context.Context, fullMethod string, req model.Request, opts ...grpc.CallOption) (model.Response, error) {
	req.ID = strconv.FormatUint(c.seq.Add(1), 10)
	in, err := structpb.NewStruct(req.Map())
	if err != nil {
		return model.Response{}, apperr.Wrap(apperr.Operation, "encoding request failed", err)
	}
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, SessionHeader, c.token)
	}

	out := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, fullMethod, in, out, opts...); err != nil {
		return model.Response{}, classify(fullMethod, err)
	}
	resp, err := model.ResponseFromMap(out.AsMap())
	if err != nil {
		return resp, apperr.Wrap(apperr.Operation, "malformed response to "+fullMethod, err)
	}
	if resp.Error != "" {
		return resp, apperr.New(apperr.Operation, resp.Error)
	}
	return resp, nil
}

// classify maps a gRPC status to an application error kind.
func classify(method string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return apperr.Wrap(apperr.Connectivity, method+" failed", err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return apperr.Wrap(apperr.Connectivity, method+" failed", err)
	case codes.Unauthenticated, codes.PermissionDenied:
		return apperr.Wrap(apperr.Authentication, st.Message(), err)
	default:
		return apperr.Wrap(apperr.Operation, st.Message(), err)
	}
}
