// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONFiltersAndMasks(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "json", &buf)

	log.Info("dropped")
	log.Warn("login failed", "detail", "password=hunter2")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1:\n%s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec["msg"] != "login failed" || rec["detail"] != "password=***" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewPrettyMasks(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "pretty", &buf).With("token", "token=abc")

	log.Debug("connecting to https://u:p@host")

	out := buf.String()
	if !strings.Contains(out, "connecting to") {
		t.Fatalf("debug message not written: %q", out)
	}
	if strings.Contains(out, "u:p@") || strings.Contains(out, "abc") {
		t.Errorf("secret leaked: %q", out)
	}
}
