// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"docsync/cli/internal/session"
)

// statusCmd performs the handshake only and reports what the server told us.
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Check the connection and show server version and user",
	Long: `The status command logs in with the settings of the launch file, checks the
server version and closes the session again without touching any script.
Use it to verify a launch file or a stored password.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		st, info, err := runSession(cmd.Context(), p, "Connecting", struct{}{},
			func(_ context.Context, s *session.Session, _ struct{}) (session.State, error) {
				return s.State(), nil
			})
		if err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Server:    %s\n", info.Address())
		fmt.Fprintf(&b, "Version:   %s\n", info.ServerVersion)
		fmt.Fprintf(&b, "Login:     %s\n", info.LoginName())
		fmt.Fprintf(&b, "User ID:   %s\n", info.UserID)
		fmt.Fprintf(&b, "Principal: %s\n", info.Principal)
		fmt.Fprintf(&b, "Session:   %s", st)
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Connection OK")).
			WithPadding(1).
			Println(b.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
