// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the docsync CLI.
package main

import (
	"docsync/cli/cmd"
)

func main() {
	cmd.Execute()
}
