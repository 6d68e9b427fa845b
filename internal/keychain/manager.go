// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores server passwords in the OS credential store.
//
// Passwords are keyed by the account they unlock, in the form
// "login@server:port" (see Account). Nothing secret is ever written to the
// config or state directories.
package keychain

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "docsync"

const passwordPrefix = "password:"

// ErrNotFound is returned when no password is stored for an account.
var ErrNotFound = errors.New("no password stored for this account")

var (
	globalManager *Manager
	mu            sync.Mutex
)

// Manager provides thread-safe password operations on the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend is implemented by the native macOS security command.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
	Keys() ([]string, error)
}

// Account builds the keychain account name for a login on a server.
func Account(login, server string, port int) string {
	return fmt.Sprintf("%s@%s:%d", login, server, port)
}

// NewManager creates a manager on the native backend of the current OS.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{backend: backend}, nil
		}
	}
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewWithKeyring wraps an already opened keyring.
func NewWithKeyring(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the process-wide manager, retrying initialization on
// every call until it succeeds once.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()
	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, fmt.Errorf("secure storage not supported on %s", runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowed,
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		LibSecretCollectionName: ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. Install 'pass' as a fallback: brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// SavePassword stores the password for account, replacing any previous one.
func (m *Manager) SavePassword(account, password string) error {
	if password == "" {
		return errors.New("refusing to store an empty password")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := passwordPrefix + account
	if m.backend != nil {
		return m.backend.Set(key, password)
	}
	return m.ring.Set(keyring.Item{Key: key, Label: "docsync " + account, Data: []byte(password)})
}

// LoadPassword returns the stored password for account or ErrNotFound.
func (m *Manager) LoadPassword(account string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := passwordPrefix + account
	if m.backend != nil {
		pw, err := m.backend.Get(key)
		if err != nil {
			return "", err
		}
		if pw == "" {
			return "", ErrNotFound
		}
		return pw, nil
	}

	it, err := m.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// DeletePassword removes the password for account. Removing a missing entry
// is not an error.
func (m *Manager) DeletePassword(account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := passwordPrefix + account
	if m.backend != nil {
		return m.backend.Delete(key)
	}
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Accounts lists the accounts that have a stored password, sorted.
func (m *Manager) Accounts() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	var err error
	if m.backend != nil {
		keys, err = m.backend.Keys()
	} else {
		keys, err = m.ring.Keys()
	}
	if err != nil {
		return nil, err
	}

	var accounts []string
	for _, k := range keys {
		if a, ok := strings.CutPrefix(k, passwordPrefix); ok {
			accounts = append(accounts, a)
		}
	}
	sort.Strings(accounts)
	return accounts, nil
}

// ClearAll removes every stored password.
func (m *Manager) ClearAll() error {
	accounts, err := m.Accounts()
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if err := m.DeletePassword(a); err != nil {
			return err
		}
	}
	return nil
}
