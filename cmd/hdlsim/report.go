package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oisee/hdlsim/pkg/report"
)

// reportRow is the cmd-local shape emitReport turns into a report.Entry;
// kept separate from report.Entry so demos.go's watch list doesn't need to
// import pkg/report just to describe itself.
type reportRow struct {
	Signal string
	Value  string
}

// emitReport prints rows as a go-pretty table to cmd's stdout, or — if
// outputPath is non-empty — writes them as JSON to that path instead.
func emitReport(cmd *cobra.Command, demoName string, ticks uint64, rows []reportRow, outputPath string) error {
	t := report.NewTable()
	for _, r := range rows {
		t.Add(report.Entry{Signal: r.Signal, Value: r.Value})
	}

	if outputPath != "" {
		if err := t.WriteJSON(outputPath); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", t.Len(), outputPath)
		return nil
	}

	title := fmt.Sprintf("%s after %d ticks", demoName, ticks)
	report.WriteTable(os.Stdout, title, t)
	return nil
}
