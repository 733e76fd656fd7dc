package commands

import (
	"fmt"
	"log/slog"

	"pmqwatch/lib/scrapers/twfy"
	"pmqwatch/lib/util/serviceutil"
	"pmqwatch/services/pmq"
	pmqdb "pmqwatch/services/pmq/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var locateSave bool

func init() {
	locateCmd.Flags().BoolVar(&locateSave, "save", false, "store the located section in the database")
	rootCmd.AddCommand(locateCmd)
}

var locateCmd = &cobra.Command{
	Use:   "locate <edition csv>",
	Short: "Locate and validate the Prime Minister's Questions section inside a flattened edition.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		contributions, sourceKey, err := readEditionCSV(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read edition csv", err)
		}

		section, err := pmq.Locate(contributions)
		if err != nil {
			serviceutil.Fatal("failed to locate the question session", err)
		}
		validation, err := pmq.Validate(contributions, section)
		if err != nil {
			serviceutil.Fatal("extracted section failed validation", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"start", "end", "rows", "continuous", "preceding heading", "following heading"})
		t.AppendRow(table.Row{
			section.Start,
			section.End,
			validation.TotalRows,
			validation.Continuous,
			orDash(validation.PrecedingHeading),
			orDash(validation.FollowingHeading),
		})
		t.Render()

		if !locateSave {
			return
		}

		cand, err := twfy.ParseKey(sourceKey)
		if err != nil {
			serviceutil.Fatal("cannot derive the sitting date", err)
		}

		database, err := config.Database.OpenDB(pmqdb.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer database.Close()

		err = pmq.NewService(database).RecordSection(ctx, pmq.RecordSectionParams{
			SittingDate: cand.Date,
			SourceKey:   sourceKey,
			Section:     section,
			Validation:  validation,
			Report:      pmq.Analyze(section),
		})
		if err != nil {
			serviceutil.Fatal("failed to store section", err)
		}
		slog.InfoContext(ctx, "stored located section",
			"sitting_date", cand.Date.Format("2006-01-02"),
			"source", sourceKey,
		)
	},
}

// readEditionCSV loads a per-edition artifact (or a combined csv, in
// which case provenance comes from its rows) and reports the edition
// key the rows came from.
func readEditionCSV(path string) (twfy.ContributionTable, string, error) {
	combined, err := twfy.ReadCombinedCSV(path)
	if err != nil {
		return nil, "", err
	}

	sourceKey := ""
	out := make(twfy.ContributionTable, 0, len(combined))
	for _, rec := range combined {
		if rec.SourceKey != "" {
			if sourceKey == "" {
				sourceKey = rec.SourceKey
			} else if sourceKey != rec.SourceKey {
				return nil, "", fmt.Errorf("%s spans multiple editions, locate runs on one sitting at a time", path)
			}
		}
		out = append(out, rec.Contribution)
	}

	if sourceKey == "" {
		// per-edition artifacts have no provenance columns, the
		// filename is the edition key
		cand, err := keyFromFilename(path)
		if err != nil {
			return nil, "", err
		}
		sourceKey = cand.Key()
	}
	return out, sourceKey, nil
}
