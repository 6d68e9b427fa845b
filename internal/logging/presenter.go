// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	apperr "docsync/cli/internal/errors"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

type advice struct {
	title  string
	reason string
	action string
}

var adviceByKind = map[apperr.Kind]advice{
	apperr.Configuration: {
		title:  "Configuration Problem",
		reason: "The connection settings are incomplete or were rejected by the server.",
		action: "Check docsync.hcl or run 'docsync login' again",
	},
	apperr.Connectivity: {
		title:  "Connection Failed",
		reason: "The application server could not be reached or dropped the connection.",
		action: "Check server, port and transport settings and that the server is running",
	},
	apperr.Authentication: {
		title:  "Login Failed",
		reason: "The server rejected the user name or password.",
		action: "Run 'docsync login' to store the correct password",
	},
	apperr.Incompatible: {
		title:  "Server Too Old",
		reason: "The server version is below what this client supports.",
		action: "Ask the server administrator to update the server",
	},
	apperr.Teardown: {
		title:  "Session Not Closed Cleanly",
		reason: "The work finished but closing the session failed, so results were not confirmed.",
		action: "Run the command again",
	},
	apperr.DecryptPermission: {
		title:  "Script Is Encrypted",
		reason: "The script is stored encrypted and this user may not decrypt it.",
		action: "Ask the server administrator for the decrypt permission",
	},
	apperr.Busy: {
		title:  "Session Busy",
		reason: "Another command is already using the session.",
		action: "Wait for it to finish and try again",
	},
}

// FormatSessionError renders err as a titled block with a remediation line.
// The error's own hint replaces the generic action when present.
func FormatSessionError(err error) string {
	if err == nil {
		return ""
	}
	kind := apperr.KindOf(err)
	a, ok := adviceByKind[kind]
	if !ok {
		a = advice{title: "Operation Failed", action: "Re-run with --verbose for details"}
	}
	if kind == apperr.Connectivity {
		if r := ClassifyNetwork(err).reason(); r != "" {
			a.reason = r
		}
	}
	var e *apperr.E
	if apperr.As(err, &e) && e.Hint != "" {
		a.action = e.Hint
	}

	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(a.title))
	b.WriteString("\n\n")
	if a.reason != "" {
		b.WriteString(a.reason)
		b.WriteString("\n\n")
	}
	b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ " + a.action))
	b.WriteString("\n\n")
	b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Details: " + Mask(err.Error())))
	return b.String()
}

// PresentSessionError prints FormatSessionError(err) surrounded by blank lines.
func PresentSessionError(err error) {
	fmt.Println()
	fmt.Println(FormatSessionError(err))
	fmt.Println()
}
