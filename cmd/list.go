// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listFileTypes bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the scripts stored on the server",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		op := p.catalog().ListNames
		title := "Listing scripts"
		if listFileTypes {
			op = p.catalog().ListFileTypes
			title = "Listing file types"
		}
		names, _, err := runSession(cmd.Context(), p, title, struct{}{}, op)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listFileTypes, "file-types", false, "List file type names instead of scripts")
	rootCmd.AddCommand(listCmd)
}
