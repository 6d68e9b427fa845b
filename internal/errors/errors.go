// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure surfaced by a session carries a machine-readable Kind, the
// operation and script it belongs to, and a remediation hint where the cause
// is a configuration problem the caller can fix.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Configuration indicates missing or incomplete login data. Never touches the network.
	Configuration Kind = "configuration"
	// Connectivity indicates the transport could not reach host:port.
	Connectivity Kind = "connectivity"
	// Authentication indicates the server rejected the credential.
	Authentication Kind = "authentication"
	// Incompatible indicates the server version is too old or not a supported product.
	Incompatible Kind = "incompatible"
	// Teardown indicates the operation succeeded but closing the session failed.
	Teardown Kind = "teardown"
	// DecryptPermission indicates a download blocked by missing decryption rights.
	DecryptPermission Kind = "decrypt_permission"
	// Operation indicates a leaf operation failure (script not found, missing source, ...).
	Operation Kind = "operation"
	// Busy indicates a session manager was reentered while a cycle was in flight.
	Busy Kind = "busy"
)

// ErrDecryptPermission is the fixed error returned when a download is blocked
// because the caller may not decrypt the script.
var ErrDecryptPermission = &E{
	Kind:    DecryptPermission,
	Message: "script is encrypted on the server and this user has no permission to decrypt it",
	Hint:    "ask the server administrator for the decrypt permission",
}

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Op      string // operation, e.g. "upload"
	Script  string // offending script name, if any
	Message string
	Hint    string
	Err     error
}

func (e *E) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Script != "" {
		fmt.Fprintf(&b, " %q", e.Script)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, " (hint: %s)", e.Hint)
	}
	return b.String()
}

func (e *E) Unwrap() error { return e.Err }

// Is matches another *E by kind and message, which makes the fixed
// ErrDecryptPermission usable as an errors.Is target after WithScript.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// WithScript returns a copy of e annotated with the operation and script name.
func (e *E) WithScript(op, script string) *E {
	c := *e
	c.Op = op
	c.Script = script
	return &c
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Hinted creates an error carrying a remediation hint.
func Hinted(kind Kind, msg, hint string) *E { return &E{Kind: kind, Message: msg, Hint: hint} }

// ForScript creates an operation-scoped error naming the offending script.
func ForScript(kind Kind, op, script, msg string, err error) *E {
	return &E{Kind: kind, Op: op, Script: script, Message: msg, Err: err}
}

// KindOf returns the kind of the first *E in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As is errors.As, re-exported so callers importing this package under its
// usual alias do not also need the standard errors package.
func As(err error, target any) bool { return stderrors.As(err, target) }
