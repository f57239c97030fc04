package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/netusage/internal/ingest"
	"github.com/sells-group/netusage/internal/model"
)

var clock = clockwork.NewRealClock()

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the monthly reports of one period",
	Long:  "Runs the totals, rankings, signals and counts importers for a period, then refreshes the views and writes the carrier snapshots. Defaults to the previous calendar month.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		year, _ := cmd.Flags().GetInt("year")
		month, _ := cmd.Flags().GetInt("month")
		only, _ := cmd.Flags().GetStringSlice("only")
		skipPublish, _ := cmd.Flags().GetBool("skip-publish")

		p, err := resolvePeriod(clock, year, month, cfg.Schedule.LagMonths)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sum, err := env.Pipeline.ImportAll(ctx, p, ingest.RunOpts{Only: only, SkipPublish: skipPublish})
		if err != nil {
			return eris.Wrap(err, "import")
		}

		formatRunSummary(os.Stdout, sum)
		return nil
	},
}

func init() {
	importCmd.Flags().Int("year", 0, "report year (default: previous month)")
	importCmd.Flags().Int("month", 0, "report month 1-12 (default: previous month)")
	importCmd.Flags().StringSlice("only", nil, "importers to run ("+strings.Join(ingest.ImporterNames(), ", ")+")")
	importCmd.Flags().Bool("skip-publish", false, "skip view refresh and snapshot publishing")
	rootCmd.AddCommand(importCmd)
}

// resolvePeriod returns the explicit period, or the previous calendar month
// shifted back by lag when neither year nor month is given.
func resolvePeriod(c clockwork.Clock, year, month, lag int) (model.Period, error) {
	if year == 0 && month == 0 {
		return model.PreviousPeriod(c.Now(), lag), nil
	}
	if year == 0 || month == 0 {
		return model.Period{}, eris.New("--year and --month must be given together")
	}
	return model.NewPeriod(year, month)
}

// formatRunSummary renders one row per importer plus the publish outcome.
func formatRunSummary(w io.Writer, sum *ingest.RunSummary) {
	fmt.Fprintf(w, "Run %s for %s\n", sum.RunID, sum.Period)

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Importer", "Inserted", "Updated", "Skipped", "Elapsed", "Error"})
	for _, imp := range sum.Importers {
		table.Append([]string{
			imp.Name,
			humanize.Comma(imp.Result.Inserted),
			humanize.Comma(imp.Result.Updated),
			humanize.Comma(imp.Result.Skipped),
			imp.Elapsed.Round(time.Millisecond).String(),
			truncate(imp.Error, 60),
		})
	}
	table.Render()

	if sum.Publish == nil {
		fmt.Fprintln(w, "Publish: skipped")
		return
	}
	fmt.Fprintf(w, "Publish: %d views refreshed (%d failed), %d snapshots written (%d failed)\n",
		sum.Publish.ViewsRefreshed, sum.Publish.ViewsFailed,
		sum.Publish.SnapshotsWritten, sum.Publish.SnapshotsFailed)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
