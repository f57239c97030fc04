package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/netusage/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent importer executions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.NewRunLog(st.Pool()).List(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs")
		}

		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, entries)
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 50, "max number of entries to display")
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList renders import_log entries newest first.
func formatRunsList(w io.Writer, entries []store.RunEntry) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"ID", "Run", "Importer", "Period", "Status", "Inserted", "Updated", "Skipped", "Started", "Duration", "Error"})

	for _, e := range entries {
		duration := "-"
		if e.CompletedAt != nil {
			duration = e.CompletedAt.Sub(e.StartedAt).Round(time.Millisecond).String()
		}
		runID := e.RunID
		if len(runID) > 8 {
			runID = runID[:8]
		}
		table.Append([]string{
			strconv.FormatInt(e.ID, 10),
			runID,
			e.Importer,
			fmt.Sprintf("%04d-%02d", e.Year, e.Month),
			e.Status,
			humanize.Comma(e.Inserted),
			humanize.Comma(e.Updated),
			humanize.Comma(e.Skipped),
			humanize.Time(e.StartedAt),
			duration,
			truncate(e.Error, 40),
		})
	}
	table.Render()
}
