// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperr "docsync/cli/internal/errors"
	"docsync/cli/internal/scripts"
)

var uploadForce bool

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload local scripts to the server",
	Long: `The upload command sends local scripts to the server in the given order.
Without arguments every *.js file in scripts_dir is uploaded.

With conflict_mode on (the default) a script whose server copy changed since
the last sync is not uploaded and is reported as a conflict. Use --force to
overwrite the server copy anyway. The first failing upload stops the batch;
scripts uploaded before it stay uploaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		records, err := localRecords(p, args)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			pterm.Info.Printf("No scripts found in %s\n", p.launch.ScriptsDir)
			return nil
		}
		for _, r := range records {
			r.ConflictMode = p.launch.ConflictModeOn()
			r.ForceUpload = uploadForce
			r.CategoryRoot = p.launch.CategoryRoot
		}

		ledger := p.ledger()
		if ledger != nil {
			ledger.Apply(p.scope(), records)
		}

		done, _, err := runSession(cmd.Context(), p, fmt.Sprintf("Uploading %d scripts", len(records)), records, p.catalog().UploadAll)

		if ledger != nil {
			ledger.Record(p.scope(), done)
			if saveErr := ledger.Save(); saveErr != nil {
				logger.Warn("saving sync history failed", "error", saveErr)
			}
		}
		printRecords(done, "uploaded")
		if err != nil {
			return err
		}
		if names := conflicted(done); len(names) > 0 {
			return apperr.Hinted(apperr.Operation,
				fmt.Sprintf("%d scripts changed on the server and were not uploaded: %s", len(names), strings.Join(names, ", ")),
				"download them first or re-run with --force")
		}
		pterm.Success.Printf("Uploaded %d scripts\n", len(done))
		return nil
	},
}

// localRecords loads the named files, or every script in scripts_dir.
func localRecords(p *project, files []string) ([]*scripts.Record, error) {
	if len(files) == 0 {
		return scripts.LoadDir(p.fs, p.launch.ScriptsDir)
	}
	records := make([]*scripts.Record, 0, len(files))
	for _, f := range files {
		r, err := scripts.LoadFile(p.fs, f)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadForce, "force", "f", false, "Upload even when the server copy changed")
	rootCmd.AddCommand(uploadCmd)
}
