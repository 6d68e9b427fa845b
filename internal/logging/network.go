// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// NetworkCause narrows a connectivity failure down for the user.
type NetworkCause int

const (
	CauseUnknown NetworkCause = iota
	CauseTimeout
	CauseDNS
	CauseRefused
	CauseTLS
)

// ClassifyNetwork inspects err for the common reasons a server is unreachable.
func ClassifyNetwork(err error) NetworkCause {
	switch {
	case err == nil:
		return CauseUnknown
	case isDNSError(err):
		return CauseDNS
	case isConnectionRefused(err):
		return CauseRefused
	case isTimeout(err):
		return CauseTimeout
	case isTLSError(err):
		return CauseTLS
	}
	return CauseUnknown
}

func (c NetworkCause) reason() string {
	switch c {
	case CauseTimeout:
		return "The server took too long to respond. It may be overloaded or a firewall may be dropping the connection."
	case CauseDNS:
		return "The server name could not be resolved. Check the spelling of the server setting."
	case CauseRefused:
		return "The server refused the connection. Check the port and that the server is running."
	case CauseTLS:
		return "The secure connection could not be established. Check the tls setting and the server certificate."
	}
	return ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "timed out") || strings.Contains(s, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") ||
		strings.Contains(s, "certificate") ||
		strings.Contains(s, "handshake")
}
