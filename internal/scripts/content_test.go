// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scripts

import "testing"

func TestHash(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "return 'hi';", want: "c54b3d3e6922282bfe7ba3d367567771"},
		{name: "bom ignored", input: "\ufeffreturn 'hi';", want: "c54b3d3e6922282bfe7ba3d367567771"},
		{name: "empty", input: "", want: "d41d8cd98f00b204e9800998ecf8427e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hash(tt.input); got != tt.want {
				t.Errorf("Hash(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestHeaderMarkers(t *testing.T) {
	local := "//#import \"lib\"\nvar x = 1; //#import not at line start\nreturn x;"
	server := "#import \"lib\"\nvar x = 1; //#import not at line start\nreturn x;"

	if got := ToServer(local); got != server {
		t.Errorf("ToServer() = %q, want %q", got, server)
	}
	if got := ToLocal(server); got != local {
		t.Errorf("ToLocal() = %q, want %q", got, local)
	}
	if got := ToLocal(ToServer(local)); got != local {
		t.Errorf("round trip changed content: %q", got)
	}
}

func TestParseEncryption(t *testing.T) {
	tests := []struct {
		in      string
		want    Encryption
		wantErr bool
	}{
		{in: "", want: Plain},
		{in: "false", want: Plain},
		{in: "true", want: Encrypted},
		{in: "TRUE", want: Encrypted},
		{in: "decrypted", want: Decrypted},
		{in: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEncryption(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEncryption(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseEncryption(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if err == nil && tt.in != "" && tt.in != "TRUE" && got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestLocalPath(t *testing.T) {
	r := &Record{Name: "a", Path: "src/a.js"}
	if got := r.LocalPath(); got != "src/a.js" {
		t.Errorf("LocalPath() = %q", got)
	}
	r.Rename = "b"
	if got := r.LocalPath(); got != "src/b.js" {
		t.Errorf("LocalPath() with rename = %q", got)
	}
}
