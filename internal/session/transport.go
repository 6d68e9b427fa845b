// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"time"
)

// Endpoint is the address a Dialer connects to.
type Endpoint struct {
	Host    string
	Port    int
	Timeout time.Duration // per-call timeout enforced by the transport; zero means none
}

// Dialer opens transport connections. Implementations live in internal/bridge.
type Dialer interface {
	Dial(ctx context.Context, ep Endpoint) (Conn, error)
}

// Conn is one open transport connection speaking the session protocol.
type Conn interface {
	// ChangeUser authenticates and returns the server-assigned user id.
	ChangeUser(ctx context.Context, login, credential string) (string, error)
	// ChangePrincipal selects the tenant for the rest of the connection.
	ChangePrincipal(ctx context.Context, principal string) error
	// Call invokes className.methodName and returns the result rows.
	Call(ctx context.Context, method string, args ...string) ([]string, error)
	// Close disconnects. It is called exactly once per connection.
	Close() error
}

// CredentialFunc transforms a plaintext password into the form the protocol expects.
type CredentialFunc func(password string) string

// PlainCredential passes the password through unchanged, for transports
// that secure the channel themselves.
func PlainCredential(password string) string { return password }
