// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package bridge selects the transport used to reach the application server.
// Both implementations satisfy session.Dialer, so the session layer never
// depends on a concrete wire protocol.
package bridge

import (
	"fmt"
	"strings"

	"docsync/cli/internal/bridge/grpcclient"
	"docsync/cli/internal/bridge/socketio"
	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/session"
)

// Transport names accepted in configuration.
const (
	GRPC     = "grpc"
	SocketIO = "socketio"
)

// Options are the transport settings shared by all implementations.
type Options struct {
	TLS                bool
	InsecureSkipVerify bool
	// SocketPath overrides the socket.io handshake path.
	SocketPath string
}

// New returns a dialer for the named transport. An empty name selects gRPC.
func New(transport string, opts Options) (session.Dialer, error) {
	switch strings.ToLower(strings.TrimSpace(transport)) {
	case "", GRPC:
		return &grpcclient.Dialer{TLS: opts.TLS, InsecureSkipVerify: opts.InsecureSkipVerify}, nil
	case SocketIO, "socket.io":
		return &socketio.Dialer{TLS: opts.TLS, InsecureSkipVerify: opts.InsecureSkipVerify, Path: opts.SocketPath}, nil
	default:
		return nil, apperr.Hinted(apperr.Configuration,
			fmt.Sprintf("unknown transport %q", transport),
			"use \"grpc\" or \"socketio\"")
	}
}
