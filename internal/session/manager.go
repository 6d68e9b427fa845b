// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	apperr "docsync/cli/internal/errors"
)

const versionMethod = "PartnerNet.getVersionNo"

// Operation is the unit of work run inside one session. params carries the
// caller's input, typically the ordered list of script records.
type Operation[P, T any] func(ctx context.Context, s *Session, params P) (T, error)

// Manager performs handshake, operation and teardown for one session at a
// time. It must not be reentered while a cycle is in flight; a concurrent
// Run fails with a busy error instead of blocking.
type Manager struct {
	dialer     Dialer
	credential CredentialFunc
	logger     *slog.Logger
	busy       atomic.Bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithCredential sets the password transform applied before authentication.
func WithCredential(fn CredentialFunc) Option {
	return func(m *Manager) { m.credential = fn }
}

// WithLogger sets the logger used for handshake and teardown diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager dialing through d.
func NewManager(d Dialer, opts ...Option) *Manager {
	m := &Manager{
		dialer:     d,
		credential: PlainCredential,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run validates info, performs the handshake, invokes op and closes the
// connection exactly once.
//
// When op fails its error is returned together with whatever partial result
// it produced; a teardown failure in that case is only logged. When op
// succeeds but teardown fails, the result is discarded and a Teardown error
// is returned. On success info carries the negotiated ServerVersion and UserID.
func Run[P, T any](ctx context.Context, m *Manager, info *ConnectionInfo, params P, op Operation[P, T]) (T, error) {
	var zero T
	if !m.busy.CompareAndSwap(false, true) {
		return zero, apperr.New(apperr.Busy, "session manager is already running a session")
	}
	defer m.busy.Store(false)

	// Negotiated values describe this cycle only.
	info.ServerVersion = ""
	info.UserID = ""

	if err := info.Validate(); err != nil {
		info.LastError = err.Error()
		return zero, err
	}

	s := &Session{
		info:   info,
		logger: m.logger.With("server", info.Address(), "principal", info.Principal),
		state:  Disconnected,
	}

	if err := m.connect(ctx, s); err != nil {
		info.LastError = err.Error()
		return zero, err
	}

	if err := m.handshake(ctx, s); err != nil {
		if closeErr := m.teardown(s); closeErr != nil {
			s.logger.Warn("closing connection after failed handshake", "error", closeErr)
		}
		info.ServerVersion = ""
		info.UserID = ""
		info.LastError = err.Error()
		return zero, err
	}

	result, opErr, closeErr := invoke(ctx, m, s, params, op)
	if opErr != nil {
		if closeErr != nil {
			s.logger.Warn("closing connection after failed operation", "error", closeErr)
		}
		info.LastError = opErr.Error()
		return result, opErr
	}
	if closeErr != nil {
		err := apperr.Wrap(apperr.Teardown, "closing the session to "+info.Address()+" failed", closeErr)
		info.LastError = err.Error()
		return zero, err
	}
	return result, nil
}

// invoke runs op and closes the session afterwards, also when op panics.
// The panic is re-raised once the connection is closed.
func invoke[P, T any](ctx context.Context, m *Manager, s *Session, params P, op Operation[P, T]) (result T, opErr, closeErr error) {
	defer func() {
		closeErr = m.teardown(s)
		if r := recover(); r != nil {
			if closeErr != nil {
				s.logger.Warn("closing connection after panic", "error", closeErr)
			}
			panic(r)
		}
	}()
	result, opErr = op(ctx, s, params)
	return result, opErr, nil
}

func (m *Manager) handshake(ctx context.Context, s *Session) error {
	for _, step := range []func(context.Context, *Session) error{
		m.authenticate,
		m.selectPrincipal,
		m.checkVersion,
		m.ready,
	} {
		if err := step(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// connect: Disconnected -> Connected.
func (m *Manager) connect(ctx context.Context, s *Session) error {
	if err := expect(s, Disconnected); err != nil {
		return err
	}
	ep := Endpoint{Host: s.info.Server, Port: s.info.Port, Timeout: s.info.Timeout}
	s.logger.Debug("connecting")
	conn, err := m.dialer.Dial(ctx, ep)
	if err != nil {
		return &apperr.E{
			Kind:    apperr.Connectivity,
			Op:      "connect",
			Message: "cannot connect to " + s.info.Address(),
			Hint:    "check that the server is running and reachable on that port",
			Err:     err,
		}
	}
	s.conn = conn
	s.state = Connected
	return nil
}

// authenticate: Connected -> Authenticated. The principal qualifies the
// login name, so an empty one fails here before anything is sent.
func (m *Manager) authenticate(ctx context.Context, s *Session) error {
	if err := expect(s, Connected); err != nil {
		return err
	}
	if strings.TrimSpace(s.info.Principal) == "" {
		return apperr.Hinted(apperr.Configuration, "please set principal",
			"add the principal (tenant) name to the launch configuration")
	}
	login := s.info.LoginName()
	s.logger.Debug("authenticating", "login", login)
	userID, err := s.conn.ChangeUser(ctx, login, m.credential(s.info.Password))
	if err != nil {
		return &apperr.E{
			Kind:    apperr.Authentication,
			Op:      "login",
			Message: fmt.Sprintf("login as %q rejected", login),
			Hint:    "check username and password, or run 'docsync login' again",
			Err:     err,
		}
	}
	s.info.UserID = userID
	s.state = Authenticated
	return nil
}

// selectPrincipal: Authenticated -> PrincipalSelected.
func (m *Manager) selectPrincipal(ctx context.Context, s *Session) error {
	if err := expect(s, Authenticated); err != nil {
		return err
	}
	if err := s.conn.ChangePrincipal(ctx, s.info.Principal); err != nil {
		return &apperr.E{
			Kind:    apperr.Configuration,
			Op:      "change principal",
			Message: fmt.Sprintf("principal %q rejected", s.info.Principal),
			Hint:    "check the principal name in the launch configuration",
			Err:     err,
		}
	}
	s.state = PrincipalSelected
	return nil
}

// checkVersion: PrincipalSelected -> VersionChecked.
func (m *Manager) checkVersion(ctx context.Context, s *Session) error {
	if err := expect(s, PrincipalSelected); err != nil {
		return err
	}
	rows, err := s.conn.Call(ctx, versionMethod)
	if err != nil {
		return apperr.Wrap(apperr.Incompatible, "server did not report a version", err)
	}
	version := ""
	if len(rows) > 0 {
		version = strings.TrimSpace(rows[0])
	}
	if version == "" {
		return apperr.Hinted(apperr.Incompatible,
			"server reported no version; it does not support this product",
			"connect to a compatible application server")
	}
	if CompareVersions(version, MinimumServerVersion) < 0 {
		return apperr.Hinted(apperr.Incompatible,
			fmt.Sprintf("server version %s is below the minimum supported version %s", version, MinimumServerVersion),
			"update the server to version "+MinimumServerVersion+" or newer")
	}
	s.info.ServerVersion = version
	s.logger.Debug("server version accepted", "version", version)
	s.state = VersionChecked
	return nil
}

// ready: VersionChecked -> Ready.
func (m *Manager) ready(_ context.Context, s *Session) error {
	if err := expect(s, VersionChecked); err != nil {
		return err
	}
	s.state = Ready
	return nil
}

// teardown moves any connected state to Closed. It closes the transport at
// most once; calling it on a closed or never-connected session is a no-op.
func (m *Manager) teardown(s *Session) error {
	if s.state == Disconnected || s.state == Closed {
		return nil
	}
	from := s.state
	s.state = Closed
	s.logger.Debug("closing connection", "from", from.String())
	return s.conn.Close()
}

func expect(s *Session, want State) error {
	if s.state != want {
		return apperr.New(apperr.Operation, fmt.Sprintf("invalid session transition from %s (expected %s)", s.state, want))
	}
	return nil
}
