// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func isVerbose() bool {
	return os.Getenv("DOCSYNC_VERBOSE") == "1"
}

// securityBackend talks to the login keychain through the security command.
// Entries use ServiceName as account and the key as service.
type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) {
	if _, err := exec.LookPath("security"); err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityBackend{}, nil
}

func (s *securityBackend) Set(key, value string) error {
	if isVerbose() {
		fmt.Printf("[DEBUG] security_darwin: Set() key '%s', value length %d\n", key, len(value))
	}
	_ = s.Delete(key)

	cmd := exec.Command("security", "add-generic-password",
		"-a", ServiceName,
		"-s", key,
		"-w", value,
		"-U",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to store '%s' in keychain: %s: %w", key, strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

func (s *securityBackend) Get(key string) (string, error) {
	if isVerbose() {
		fmt.Printf("[DEBUG] security_darwin: Get() key '%s'\n", key)
	}
	cmd := exec.Command("security", "find-generic-password",
		"-a", ServiceName,
		"-s", key,
		"-w",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "could not be found") {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to retrieve from keychain: %s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (s *securityBackend) Delete(key string) error {
	cmd := exec.Command("security", "delete-generic-password",
		"-a", ServiceName,
		"-s", key,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "could not be found") {
			return nil
		}
		return fmt.Errorf("failed to delete from keychain: %s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

// Keys scans dump-keychain output for generic passwords owned by ServiceName.
func (s *securityBackend) Keys() ([]string, error) {
	out, err := exec.Command("security", "dump-keychain").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list keychain entries: %w", err)
	}
	return parseDump(out), nil
}

func parseDump(out []byte) []string {
	var keys []string
	var acct, svce string
	flush := func() {
		if acct == ServiceName && svce != "" {
			keys = append(keys, svce)
		}
		acct, svce = "", ""
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "keychain:"):
			flush()
		case strings.HasPrefix(line, `"acct"<blob>=`):
			acct = blobValue(line)
		case strings.HasPrefix(line, `"svce"<blob>=`):
			svce = blobValue(line)
		}
	}
	flush()
	return keys
}

func blobValue(line string) string {
	_, v, _ := strings.Cut(line, "=")
	return strings.Trim(v, `"`)
}
