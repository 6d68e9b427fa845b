// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for docsync. Every command
// that talks to the application server opens exactly one session, runs its
// work inside it and closes it again; see runSession.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/logging"
)

var (
	showVersion bool
	configPath  string
	verbose     bool
	logFormat   string

	logger = logging.Discard()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Synchronize server-side scripts with a local folder",
	Long: `docsync uploads, downloads and runs the scripts stored on a document
application server. Connection settings are read from a launch file
(docsync.hcl by default); passwords are kept in the OS keychain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if apperr.KindOf(err) != "" {
			logging.PresentSessionError(err)
		} else {
			fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Launch file (default ./docsync.hcl)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: pretty, text or json")
}

// newLogger builds the logger from user settings and flags. --verbose and
// DOCSYNC_VERBOSE=1 force debug level.
func newLogger() *slog.Logger {
	settings := loadSettings()
	level := settings.LogLevel
	if verbose || os.Getenv("DOCSYNC_VERBOSE") == "1" {
		level = "debug"
	}
	format := settings.LogFormat
	if logFormat != "" {
		format = logFormat
	}
	return logging.New(level, format, os.Stderr)
}
