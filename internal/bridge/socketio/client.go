// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package socketio provides a session transport over a socket.io WebSocket
// connection. Each request is emitted on the "request" event and answered on
// a per-request "response:<id>" event.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"docsync/cli/internal/bridge/model"
	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/session"
)

const (
	requestEvent   = "request"
	responsePrefix = "response:"

	// DefaultPath is the socket.io handshake path used when none is configured.
	DefaultPath = "/socket.io/"

	defaultTimeout = 15 * time.Second
)

// Dialer opens socket.io connections to the application server.
type Dialer struct {
	TLS                bool
	InsecureSkipVerify bool
	Path               string
	Namespace          string
}

// Dial implements session.Dialer and waits for the connect event.
func (d *Dialer) Dial(ctx context.Context, ep session.Endpoint) (session.Conn, error) {
	scheme := "http"
	if d.TLS {
		scheme = "https"
	}
	baseURL := fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port)))

	path := d.Path
	if path == "" {
		path = DefaultPath
	}
	opts := socket.DefaultOptions()
	opts.SetPath(path)
	if d.TLS && d.InsecureSkipVerify {
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connected := make(chan error, 1)
	manager := socket.NewManager(baseURL, opts)
	nsp := d.Namespace
	if nsp == "" {
		nsp = "/"
	}
	io := manager.Socket(nsp, opts)

	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, apperr.Wrap(apperr.Connectivity, "socket.io connection to "+baseURL+" failed", err)
		}
		return &conn{io: io, timeout: timeout}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, apperr.Wrap(apperr.Connectivity, "connecting to "+baseURL+" cancelled", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, apperr.New(apperr.Connectivity, fmt.Sprintf("timed out after %v waiting for socket.io connection to %s", timeout, baseURL))
	}
}

// emitter is the part of *socket.Socket a conn uses.
type emitter interface {
	Connected() bool
	Once(types.EventName, ...types.Listener) error
	Emit(string, ...any) error
	RemoveAllListeners(types.EventName) bool
	Disconnect() *socket.Socket
}

type conn struct {
	io      emitter
	timeout time.Duration
	seq     atomic.Uint64
}

func (c *conn) ChangeUser(ctx context.Context, login, credential string) (string, error) {
	resp, err := c.request(ctx, model.Request{Kind: model.KindChangeUser, Login: login, Credential: credential})
	if err != nil {
		return "", err
	}
	return resp.UserID, nil
}

func (c *conn) ChangePrincipal(ctx context.Context, principal string) error {
	_, err := c.request(ctx, model.Request{Kind: model.KindChangePrincipal, Principal: principal})
	return err
}

func (c *conn) Call(ctx context.Context, method string, args ...string) ([]string, error) {
	resp, err := c.request(ctx, model.Request{Kind: model.KindCall, Method: method, Args: args})
	if err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (c *conn) Close() error {
	if !c.io.Connected() {
		return apperr.New(apperr.Connectivity, "socket.io connection already closed")
	}
	c.io.Disconnect()
	return nil
}

type result struct {
	resp model.Response
	err  error
}

func (c *conn) request(ctx context.Context, req model.Request) (model.Response, error) {
	if !c.io.Connected() {
		return model.Response{}, apperr.New(apperr.Connectivity, "socket.io connection lost")
	}
	req.ID = strconv.FormatUint(c.seq.Add(1), 10)

	event := types.EventName(responsePrefix + req.ID)

	done := make(chan result, 1)
	if err := c.io.Once(event, func(data ...any) {
		done <- decode(data)
	}); err != nil {
		return model.Response{}, apperr.Wrap(apperr.Connectivity, "registering response handler failed", err)
	}
	if err := c.io.Emit(requestEvent, req.Map()); err != nil {
		c.io.RemoveAllListeners(event)
		return model.Response{}, apperr.Wrap(apperr.Connectivity,
			fmt.Sprintf("sending %s %s failed", req.Kind, req.Method), err)
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	select {
	case <-opCtx.Done():
		c.io.RemoveAllListeners(event)
		return model.Response{}, apperr.Wrap(apperr.Connectivity,
			fmt.Sprintf("no response to %s %s", req.Kind, req.Method), opCtx.Err())
	case res := <-done:
		return res.resp, res.err
	}
}

// decode turns the payload of a response event into a Response.
func decode(data []any) result {
	if len(data) == 0 {
		return result{err: apperr.New(apperr.Operation, "empty response")}
	}
	m, ok := data[0].(map[string]any)
	if !ok {
		return result{err: apperr.New(apperr.Operation, fmt.Sprintf("unexpected response payload %T", data[0]))}
	}
	resp, err := model.ResponseFromMap(m)
	if err != nil {
		return result{resp: resp, err: apperr.Wrap(apperr.Operation, "malformed response", err)}
	}
	if resp.Error != "" {
		return result{resp: resp, err: apperr.New(apperr.Operation, resp.Error)}
	}
	return result{resp: resp}
}
