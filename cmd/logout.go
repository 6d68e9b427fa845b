// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"docsync/cli/internal/keychain"
)

var (
	logoutAll    bool
	logoutForget bool
)

// logoutCmd removes stored passwords, and optionally the sync history.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored password for this launch file",
	Long: `The logout command removes the keychain entry of the launch file's account.
With --all every docsync password is removed. With --forget the sync history
for the server and principal is dropped too, so the next upload treats every
script as never synced.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if logoutAll {
			if err := km.ClearAll(); err != nil {
				return err
			}
			fmt.Println("✅ All stored passwords have been removed")
			return nil
		}

		p, err := loadProject()
		if err != nil {
			return err
		}
		if err := km.DeletePassword(p.launch.Account()); err != nil {
			return err
		}
		if logoutForget {
			if l := p.ledger(); l != nil {
				l.Forget(p.scope())
				if err := l.Save(); err != nil {
					return err
				}
			}
		}
		fmt.Printf("✅ Password for %s has been removed\n", p.launch.Account())
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "Remove every stored docsync password")
	logoutCmd.Flags().BoolVar(&logoutForget, "forget", false, "Also forget the sync history of this server and principal")
	rootCmd.AddCommand(logoutCmd)
}
