// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"docsync/cli/internal/scripts"
)

var runCmd = &cobra.Command{
	Use:   "run <names...>",
	Short: "Run scripts on the server and print their output",
	Long: `The run command executes the named scripts on the server one after another
and prints the output of each. The first failing script stops the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		records := make([]*scripts.Record, 0, len(args))
		for _, n := range args {
			records = append(records, &scripts.Record{Name: n})
		}

		done, _, err := runSession(cmd.Context(), p, fmt.Sprintf("Running %d scripts", len(records)), records, p.catalog().RunAll)
		for _, r := range done {
			pterm.DefaultSection.Println(r.Name)
			fmt.Println(r.Output)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
