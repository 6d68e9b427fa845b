// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperr "docsync/cli/internal/errors"
)

const (
	// MinimumServerVersion is the oldest server build the handshake accepts.
	MinimumServerVersion = "8034"
	// CategoryMinVersion is the first build that reports script categories.
	CategoryMinVersion = "8041"
	// FieldTypesMinVersion is the first build that reports typed file type metadata.
	FieldTypesMinVersion = "8044"

	// SuperuserName authenticates without a principal qualifier.
	SuperuserName = "admin"
)

// ConnectionInfo holds the login data of one session plus the values the
// handshake negotiates. It is filled by the caller before Run and updated in
// place by the Manager (ServerVersion, UserID, LastWarning, LastError).
type ConnectionInfo struct {
	Server    string
	Port      int
	Principal string
	Username  string
	Password  string
	Timeout   time.Duration

	ServerVersion string
	UserID        string
	LastWarning   string
	LastError     string
}

// Validate checks that the login data is complete enough to open a
// connection. The principal is checked later, on the connected transport.
func (c *ConnectionInfo) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Server) == "" {
		missing = append(missing, "server")
	}
	if c.Port <= 0 {
		missing = append(missing, "port")
	}
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "username")
	}
	if len(missing) == 0 {
		return nil
	}
	return apperr.Hinted(apperr.Configuration,
		"Login information missing: "+strings.Join(missing, ", "),
		"set server, port, principal and username in the launch configuration")
}

// Address returns host:port for messages.
func (c *ConnectionInfo) Address() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

// LoginName is the account name sent on authentication: the bare username
// for the superuser, username.principal for everyone else.
func (c *ConnectionInfo) LoginName() string {
	if c.Username == SuperuserName || c.Principal == "" {
		return c.Username
	}
	return c.Username + "." + c.Principal
}

// Supports reports whether the negotiated server version is at least min.
func (c *ConnectionInfo) Supports(min string) bool {
	if c.ServerVersion == "" {
		return false
	}
	return CompareVersions(c.ServerVersion, min) >= 0
}

// CompareVersions compares dotted numeric versions segment by segment.
// Non-numeric segments compare lexically. Missing segments count as zero.
func CompareVersions(a, b string) int {
	as := strings.Split(strings.TrimSpace(a), ".")
	bs := strings.Split(strings.TrimSpace(b), ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		x, y := "0", "0"
		if i < len(as) && as[i] != "" {
			x = as[i]
		}
		if i < len(bs) && bs[i] != "" {
			y = bs[i]
		}
		xi, xerr := strconv.Atoi(x)
		yi, yerr := strconv.Atoi(y)
		switch {
		case xerr == nil && yerr == nil:
			if xi != yi {
				if xi < yi {
					return -1
				}
				return 1
			}
		default:
			if c := strings.Compare(x, y); c != 0 {
				return c
			}
		}
	}
	return 0
}
