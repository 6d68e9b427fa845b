// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session turns connection parameters into an authenticated,
// principal-scoped session, runs exactly one operation against it and
// guarantees the connection is closed afterwards.
//
// The handshake is a linear state machine:
//
//	Disconnected -> Connected -> Authenticated -> PrincipalSelected -> VersionChecked -> Ready -> Closed
//
// Every state after Disconnected has a single teardown path to Closed.
package session

import (
	"context"
	"log/slog"

	apperr "docsync/cli/internal/errors"
)

// State is a step of the handshake state machine.
type State int

const (
	Disconnected State = iota
	Connected
	Authenticated
	PrincipalSelected
	VersionChecked
	Ready
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Authenticated:
		return "authenticated"
	case PrincipalSelected:
		return "principal_selected"
	case VersionChecked:
		return "version_checked"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Session is an authenticated, principal-scoped handle bound to one
// connection. It is only valid inside the Operation it was passed to.
type Session struct {
	conn   Conn
	info   *ConnectionInfo
	logger *slog.Logger
	state  State
}

// Info returns the connection info of the session, including the negotiated version.
func (s *Session) Info() *ConnectionInfo { return s.info }

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// State returns the current handshake state.
func (s *Session) State() State { return s.state }

// Supports reports whether the negotiated server version is at least min.
func (s *Session) Supports(min string) bool { return s.info.Supports(min) }

// Warn records a non-fatal degradation on the connection info and logs it.
func (s *Session) Warn(msg string, args ...any) {
	s.info.LastWarning = msg
	s.logger.Warn(msg, args...)
}

// Call invokes a remote className.methodName on the live connection.
func (s *Session) Call(ctx context.Context, method string, args ...string) ([]string, error) {
	if s.state != Ready {
		return nil, apperr.New(apperr.Operation, "session is "+s.state.String()+", not ready")
	}
	s.logger.Debug("remote call", "method", method, "args", len(args))
	rows, err := s.conn.Call(ctx, method, args...)
	if err != nil {
		return nil, &apperr.E{Kind: apperr.Operation, Op: method, Message: "remote call failed", Err: err}
	}
	return rows, nil
}
