// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"docsync/cli/internal/scripts"
)

var downloadCmd = &cobra.Command{
	Use:   "download [names...]",
	Short: "Download scripts from the server",
	Long: `The download command writes server scripts into scripts_dir, or into
category_root/<category>/ when the server reports categories. Without
arguments every script on the server is downloaded.

A script that cannot be downloaded (missing, encrypted without decrypt
permission) is reported and skipped; the others are still written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}

		var done []*scripts.Record
		if len(args) == 0 {
			target := scripts.Target{
				Dir:          p.launch.ScriptsDir,
				CategoryRoot: p.launch.CategoryRoot,
				ConflictMode: p.launch.ConflictModeOn(),
			}
			done, _, err = runSession(cmd.Context(), p, "Downloading all scripts", target, p.catalog().DownloadServer)
		} else {
			done, _, err = runSession(cmd.Context(), p, fmt.Sprintf("Downloading %d scripts", len(args)), remoteRecords(p, args), p.catalog().DownloadAll)
		}

		if ledger := p.ledger(); ledger != nil {
			ledger.Record(p.scope(), done)
			if saveErr := ledger.Save(); saveErr != nil {
				logger.Warn("saving sync history failed", "error", saveErr)
			}
		}
		printRecords(done, "downloaded")
		if err != nil {
			return err
		}
		if len(args) > 0 && len(done) < len(args) {
			pterm.Warning.Printf("%d of %d scripts were skipped, run with --verbose for details\n", len(args)-len(done), len(args))
		}
		pterm.Success.Printf("Downloaded %d scripts\n", len(done))
		return nil
	},
}

// remoteRecords builds download records for script names.
func remoteRecords(p *project, names []string) []*scripts.Record {
	records := make([]*scripts.Record, 0, len(names))
	for _, n := range names {
		records = append(records, &scripts.Record{
			Name:         n,
			Path:         filepath.Join(p.launch.ScriptsDir, n+scripts.ScriptExt),
			CategoryRoot: p.launch.CategoryRoot,
			ConflictMode: p.launch.ConflictModeOn(),
		})
	}
	return records
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
