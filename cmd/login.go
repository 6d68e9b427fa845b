// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"docsync/cli/internal/config"
	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/keychain"
	"docsync/cli/internal/session"
	"docsync/cli/internal/terminal"
)

// loginCmd verifies a password against the server and stores it in the OS
// keychain for the launch file's account.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify and store the server password in the OS keychain",
	Long: `The login command asks for the password of the account named in the launch
file, performs a full handshake with it and, when the server accepts it, stores
the password in the OS keychain. Later commands pick it up automatically.

In non-interactive use the password is taken from DOCSYNC_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		if err := p.launch.ConnectionInfo("").Validate(); err != nil {
			return err
		}

		password, err := readPassword(p.launch)
		if err != nil {
			return err
		}
		p.password = password

		_, info, err := runSession(cmd.Context(), p, "Logging in", struct{}{},
			func(context.Context, *session.Session, struct{}) (struct{}, error) { return struct{}{}, nil })
		if err != nil {
			return err
		}

		km, err := keychain.GetManager()
		if err != nil {
			return apperr.Hinted(apperr.Configuration, "no OS keychain available: "+err.Error(),
				"set "+config.PasswordEnv+" or put the password in the launch file")
		}
		if err := km.SavePassword(p.launch.Account(), password); err != nil {
			return apperr.Wrap(apperr.Configuration, "storing the password failed", err)
		}
		pterm.Success.Printf("Logged in as %s on %s (server %s)\n", info.LoginName(), info.Address(), info.ServerVersion)
		return nil
	},
}

func readPassword(l *config.Launch) (string, error) {
	if !terminal.IsInteractive() {
		if pw := os.Getenv(config.PasswordEnv); pw != "" {
			return pw, nil
		}
		return "", apperr.Hinted(apperr.Configuration, "no terminal to prompt for a password",
			"set "+config.PasswordEnv)
	}
	prompt := "Password for " + l.Account() + ": "
	pw, err := terminal.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	terminal.ClearPreviousLines(len(prompt))
	if strings.TrimSpace(pw) == "" {
		return "", errors.New("empty password")
	}
	return pw, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
