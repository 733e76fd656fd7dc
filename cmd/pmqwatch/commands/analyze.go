package commands

import (
	"fmt"
	"strings"

	"pmqwatch/lib/util/serviceutil"
	"pmqwatch/services/pmq"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <edition csv>",
	Short: "Locate the question session in a flattened edition and report its structure.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		contributions, _, err := readEditionCSV(args[0])
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
		report := pmq.Analyze(section)

		renderReport(section.Start, section.End, validation, report)
	},
}

func renderReport(start, end int, validation pmq.Validation, report pmq.Report) {
	missing := "-"
	if len(report.MissingQuestionNumbers) > 0 {
		var parts []string
		for _, n := range report.MissingQuestionNumbers {
			parts = append(parts, fmt.Sprintf("Q%d", n))
		}
		missing = strings.Join(parts, ", ")
	}

	t := newTable()
	t.AppendHeader(table.Row{"metric", "value"})
	t.AppendRows([]table.Row{
		{"rows", report.TotalRows},
		{"questions", report.NumQuestions},
		{"speakers", report.NumSpeakers},
		{"question numbers", strings.Join(report.QuestionNumbers, ", ")},
		{"sequence complete", report.QuestionSequenceComplete},
		{"missing", missing},
		{"has start marker", report.HasStartMarker},
		{"has engagements question", report.HasEngagementQuestion},
		{"range", fmt.Sprintf("[%d, %d]", start, end)},
		{"continuous", validation.Continuous},
		{"preceding heading", orDash(validation.PrecedingHeading)},
		{"following heading", orDash(validation.FollowingHeading)},
	})
	t.Render()

	if len(report.SpeechTypes) > 0 {
		types := newTable()
		types.AppendHeader(table.Row{"speech type", "count"})
		for _, tag := range sortedKeys(report.SpeechTypes) {
			types.AppendRow(table.Row{tag, report.SpeechTypes[tag]})
		}
		types.Render()
	}

	if len(report.SpeakerAliases) > 0 {
		aliases := newTable()
		aliases.AppendHeader(table.Row{"speaker", "possible alias", "similarity"})
		for _, alias := range report.SpeakerAliases {
			aliases.AppendRow(table.Row{alias.A, alias.B, fmt.Sprintf("%.3f", alias.Similarity)})
		}
		aliases.Render()
	}
}
