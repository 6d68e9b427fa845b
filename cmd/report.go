// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"

	"docsync/cli/internal/scripts"
)

// recordRows renders one table row per record: name, outcome and path.
func recordRows(records []*scripts.Record, done string) [][]string {
	rows := [][]string{{"Script", "Result", "Path"}}
	for _, r := range records {
		result := done
		if r.Conflict {
			result = "conflict"
		}
		rows = append(rows, []string{r.Name, result, r.Path})
	}
	return rows
}

func printRecords(records []*scripts.Record, done string) {
	if len(records) == 0 {
		return
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(recordRows(records, done)).Render()
}

// conflicted returns the names of records that were held back.
func conflicted(records []*scripts.Record) []string {
	var names []string
	for _, r := range records {
		if r.Conflict {
			names = append(names, r.Name)
		}
	}
	return names
}
