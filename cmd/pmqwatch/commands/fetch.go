package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"pmqwatch/lib/notify"
	"pmqwatch/lib/scrapers/twfy"
	"pmqwatch/lib/util/serviceutil"
	"pmqwatch/services/debates"
	debatesdb "pmqwatch/services/debates/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var fetchStart string
var fetchEnd string
var fetchOut string

func init() {
	fetchCmd.Flags().StringVar(&fetchStart, "start", "", "first date of the range (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "", "last date of the range (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "output directory, overrides the configured one")
	fetchCmd.MarkFlagRequired("start")
	fetchCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch every sitting day's debate editions in a date range and flatten them into contribution tables.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		start, err := parseDateFlag(fetchStart)
		if err != nil {
			serviceutil.Fatal("invalid --start date", err)
		}
		end, err := parseDateFlag(fetchEnd)
		if err != nil {
			serviceutil.Fatal("invalid --end date", err)
		}

		outDir := config.Scraper.OutputDir
		if fetchOut != "" {
			outDir = fetchOut
		}

		candidates := twfy.EnumerateCandidates(start, end)
		if len(candidates) == 0 {
			slog.WarnContext(ctx, "no sitting days in range",
				"start", fetchStart,
				"end", fetchEnd,
			)
			return
		}

		client, err := newScraperClient()
		if err != nil {
			serviceutil.Fatal("failed to create scraper client", err)
		}

		batch, err := twfy.FetchAll(ctx, client, candidates, twfy.FetchOptions{
			Concurrency: config.Scraper.Concurrency,
			OutputDir:   outDir,
		})
		if err != nil {
			serviceutil.Fatal("fetch batch failed", err)
		}

		combined := batch.Combined()
		combinedPath := ""
		if len(combined) == 0 {
			slog.WarnContext(ctx, "no edition produced any data, skipping combined output",
				"start", fetchStart,
				"end", fetchEnd,
			)
		} else {
			combinedPath = filepath.Join(outDir, fmt.Sprintf("combined_%s.csv", batch.RunID))
			err = twfy.WriteCombinedCSV(combinedPath, combined)
			if err != nil {
				serviceutil.Fatal("failed to write combined csv", err)
			}
		}

		database, err := config.Database.OpenDB(debatesdb.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer database.Close()

		err = debates.NewService(database).RecordBatch(ctx, batch)
		if err != nil {
			serviceutil.Fatal("failed to record batch", err)
		}

		fetched, absent, failed := batch.Counts()
		t := newTable()
		t.AppendHeader(table.Row{"run id", "range", "fetched", "absent", "failed", "rows", "combined csv"})
		t.AppendRow(table.Row{
			batch.RunID,
			fmt.Sprintf("%s — %s", fetchStart, fetchEnd),
			fetched,
			absent,
			failed,
			len(combined),
			combinedPath,
		})
		t.Render()

		notifier := notify.NewNotifier(config.Notifier)
		if notifier.Enabled() {
			body := fmt.Sprintf(
				"Run %s covered %s to %s.\n\nEditions fetched: %d\nEditions absent: %d\nEditions failed: %d\nContributions: %d\nCombined output: %s\nProcessed at: %s\n",
				batch.RunID, fetchStart, fetchEnd,
				fetched, absent, failed,
				len(combined), combinedPath,
				batch.ProcessedAt.Format(time.RFC3339),
			)
			err := notifier.Send(ctx, fmt.Sprintf("pmqwatch run %s", batch.RunID), body)
			if err != nil {
				slog.ErrorContext(ctx, "failed to send run summary", "err", err)
			}
		}
	},
}
