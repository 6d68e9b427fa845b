// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package testutil provides an in-memory application server and filesystem
// for tests of the session and script packages.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"docsync/cli/internal/session"
)

// Script is the server-side state of one script.
type Script struct {
	Source     string
	Encrypted  string // "false", "true" or "decrypted" as reported to the client
	Category   string
	Parameters string
}

// Call records one remote call received by the fake server.
type Call struct {
	Method string
	Args   []string
}

// FakeServer implements session.Dialer over an in-memory script store.
// Failure fields inject errors at the matching protocol step.
type FakeServer struct {
	mu sync.Mutex

	Version   string
	Users     map[string]string // login -> password; nil accepts any login
	Scripts   map[string]*Script
	RunOutput map[string][]string
	FileTypes []string

	DialErr      error
	ChangeErr    error
	PrincipalErr error
	CloseErr     error
	CallErr      map[string]error  // method -> transport error
	RowError     map[string]string // method -> error text returned in row 0

	Dials     int // dial attempts, including failed ones
	Closes    int
	Logins    []string
	Principal string
	Calls     []Call
}

// NewFakeServer returns a server reporting version 8046 with no scripts.
func NewFakeServer() *FakeServer {
	return &FakeServer{
		Version:   "8046",
		Scripts:   map[string]*Script{},
		RunOutput: map[string][]string{},
		CallErr:   map[string]error{},
		RowError:  map[string]string{},
	}
}

// Dial implements session.Dialer.
func (f *FakeServer) Dial(_ context.Context, _ session.Endpoint) (session.Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Dials++
	if f.DialErr != nil {
		return nil, f.DialErr
	}
	return &fakeConn{srv: f}, nil
}

// Put stores a script as if it had been edited on the server.
func (f *FakeServer) Put(name, source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Scripts[name]
	if !ok {
		s = &Script{Encrypted: "false"}
		f.Scripts[name] = s
	}
	s.Source = source
}

// Get returns a copy of a stored script.
func (f *FakeServer) Get(name string) (Script, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Scripts[name]
	if !ok {
		return Script{}, false
	}
	return *s, true
}

// CallCount counts received calls of one method.
func (f *FakeServer) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// TransportCalls counts every touch of the transport: dial attempts, logins, calls and closes.
func (f *FakeServer) TransportCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Dials + f.Closes + len(f.Logins) + len(f.Calls)
}

type fakeConn struct {
	srv    *FakeServer
	closed bool
}

func (c *fakeConn) ChangeUser(_ context.Context, login, credential string) (string, error) {
	f := c.srv
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Logins = append(f.Logins, login)
	if f.ChangeErr != nil {
		return "", f.ChangeErr
	}
	if f.Users != nil {
		if pw, ok := f.Users[login]; !ok || pw != credential {
			return "", errors.New("invalid user or password")
		}
	}
	return "uid-" + login, nil
}

func (c *fakeConn) ChangePrincipal(_ context.Context, principal string) error {
	f := c.srv
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PrincipalErr != nil {
		return f.PrincipalErr
	}
	f.Principal = principal
	return nil
}

func (c *fakeConn) Call(_ context.Context, method string, args ...string) ([]string, error) {
	f := c.srv
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: method, Args: append([]string(nil), args...)})
	if err := f.CallErr[method]; err != nil {
		return nil, err
	}
	if text := f.RowError[method]; text != "" {
		return []string{text}, nil
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	switch method {
	case "PartnerNet.getVersionNo":
		return []string{f.Version}, nil
	case "PortalScript.uploadScript":
		s, ok := f.Scripts[arg(0)]
		if !ok {
			s = &Script{}
			f.Scripts[arg(0)] = s
		}
		s.Source = arg(1)
		s.Encrypted = arg(2)
		return nil, nil
	case "PortalScript.downloadScript":
		s, ok := f.Scripts[arg(0)]
		if !ok {
			return nil, nil
		}
		enc := s.Encrypted
		if enc == "" {
			enc = "false"
		}
		rows := []string{s.Source, enc}
		if s.Category != "" {
			rows = append(rows, s.Category)
		}
		return rows, nil
	case "PortalScript.runScript":
		if _, ok := f.Scripts[arg(0)]; !ok {
			return nil, nil
		}
		return append([]string(nil), f.RunOutput[arg(0)]...), nil
	case "PortalScript.getScriptNames":
		names := make([]string, 0, len(f.Scripts))
		for n := range f.Scripts {
			names = append(names, n)
		}
		sort.Strings(names)
		return names, nil
	case "PortalScript.setScriptParameters":
		s, ok := f.Scripts[arg(0)]
		if !ok {
			return []string{"script not found"}, nil
		}
		s.Parameters = arg(1)
		return nil, nil
	case "PortalScript.getFileTypeNames":
		return append([]string(nil), f.FileTypes...), nil
	}
	return nil, errors.New("unknown method " + method)
}

func (c *fakeConn) Close() error {
	f := c.srv
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.closed {
		return errors.New("connection already closed")
	}
	c.closed = true
	f.Closes++
	return f.CloseErr
}
