package commands

import (
	"fmt"
	"strings"

	"pmqwatch/lib/util/serviceutil"
	"pmqwatch/services/pmq"
	pmqdb "pmqwatch/services/pmq/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var reportDate string

func init() {
	reportCmd.Flags().StringVar(&reportDate, "date", "", "sitting date (YYYY-MM-DD), lists stored sittings when omitted")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a stored question session from the database without refetching.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database, err := config.Database.OpenDB(pmqdb.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer database.Close()
		service := pmq.NewService(database)

		if reportDate == "" {
			dates, err := service.ListSittingDates(ctx)
			if err != nil {
				serviceutil.Fatal("failed to list stored sittings", err)
			}
			t := newTable()
			t.AppendHeader(table.Row{"sitting date"})
			for _, date := range dates {
				t.AppendRow(table.Row{date})
			}
			t.Render()
			return
		}

		date, err := parseDateFlag(reportDate)
		if err != nil {
			serviceutil.Fatal("invalid --date", err)
		}

		stored, err := service.GetSection(ctx, date)
		if err != nil {
			serviceutil.Fatal("failed to load stored section", err)
		}

		missing := "-"
		if len(stored.MissingNumbers) > 0 {
			var parts []string
			for _, n := range stored.MissingNumbers {
				parts = append(parts, fmt.Sprintf("Q%d", n))
			}
			missing = strings.Join(parts, ", ")
		}

		summary := newTable()
		summary.AppendHeader(table.Row{"metric", "value"})
		summary.AppendRows([]table.Row{
			{"sitting date", stored.SittingDate},
			{"source", stored.SourceKey},
			{"range", fmt.Sprintf("[%d, %d]", stored.Start, stored.End)},
			{"rows", stored.TotalRows},
			{"questions", stored.NumQuestions},
			{"speakers", stored.NumSpeakers},
			{"question numbers", strings.Join(stored.QuestionNumbers, ", ")},
			{"sequence complete", stored.SequenceComplete},
			{"missing", missing},
			{"preceding heading", orDash(stored.PrecedingHeading)},
			{"following heading", orDash(stored.FollowingHeading)},
		})
		summary.Render()

		rows := newTable()
		rows.AppendHeader(table.Row{"#", "group", "qnum", "speaker", "text"})
		for _, row := range stored.Rows {
			rows.AppendRow(table.Row{
				row.Sequence,
				row.QaGroup,
				row.OralQnum.String,
				row.SpeakerName.String,
				truncate(row.Body.String, 80),
			})
		}
		rows.Render()
	},
}
