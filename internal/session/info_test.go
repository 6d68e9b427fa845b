// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"8034", "8034", 0},
		{"8046", "8034", 1},
		{"8010", "8034", -1},
		{"8044.1", "8044", 1},
		{"8044.0", "8044", 0},
		{"10000", "8034", 1},
		{"5.0c", "5.0b", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := CompareVersions(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLoginName(t *testing.T) {
	tests := []struct {
		name string
		info ConnectionInfo
		want string
	}{
		{name: "qualified", info: ConnectionInfo{Username: "schreiber", Principal: "relations"}, want: "schreiber.relations"},
		{name: "superuser", info: ConnectionInfo{Username: "admin", Principal: "relations"}, want: "admin"},
		{name: "no principal", info: ConnectionInfo{Username: "schreiber"}, want: "schreiber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.LoginName(); got != tt.want {
				t.Errorf("LoginName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSupports(t *testing.T) {
	info := ConnectionInfo{}
	if info.Supports(CategoryMinVersion) {
		t.Fatalf("unknown version must not support anything")
	}
	info.ServerVersion = "8041"
	if !info.Supports(CategoryMinVersion) {
		t.Errorf("8041 should support categories")
	}
	if info.Supports(FieldTypesMinVersion) {
		t.Errorf("8041 should not support field types")
	}
}
