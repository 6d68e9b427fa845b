// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scripts

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"runtime"
	"strings"
)

const bom = "\ufeff"

var (
	// Import directives break local JavaScript tooling, so they are kept
	// commented out locally and uncommented on the server.
	reLocalImport  = regexp.MustCompile(`(?m)^//#import\b`)
	reServerImport = regexp.MustCompile(`(?m)^#import\b`)
)

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, bom)
}

// Hash returns the hex MD5 of s after removing a byte order mark.
func Hash(s string) string {
	sum := md5.Sum([]byte(StripBOM(s)))
	return hex.EncodeToString(sum[:])
}

// ToServer removes the local header markers before upload.
func ToServer(local string) string {
	return reLocalImport.ReplaceAllString(local, "#import")
}

// ToLocal restores the local header markers after download.
func ToLocal(server string) string {
	return reServerImport.ReplaceAllString(server, "//#import")
}

// LineSeparator is the platform line separator used to join run output.
func LineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
