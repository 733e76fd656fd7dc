package commands

import (
	"pmqwatch/lib/scrapers/twfy"
	"pmqwatch/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchQuery string
var searchNum int
var searchPage int

func init() {
	searchCmd.Flags().StringVar(&searchQuery, "query", twfy.DefaultSearchQuery, "search query")
	searchCmd.Flags().IntVar(&searchNum, "num", 25, "number of results")
	searchCmd.Flags().IntVar(&searchPage, "page", 0, "results page")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search commons debates through the theyworkforyou api.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client, err := newScraperClient()
		if err != nil {
			serviceutil.Fatal("failed to create scraper client", err)
		}

		hits, err := client.SearchDebates(ctx, apiKey(), twfy.SearchOptions{
			Query: searchQuery,
			Num:   searchNum,
			Page:  searchPage,
		})
		if err != nil {
			serviceutil.Fatal("search failed", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"date", "time", "speaker", "party", "section", "text"})
		for _, hit := range hits {
			t.AppendRow(table.Row{
				hit.Date,
				orDash(hit.Time),
				orDash(hit.SpeakerName),
				orDash(hit.Party),
				truncate(orDash(hit.Section), 40),
				truncate(hit.Body, 80),
			})
		}
		t.Render()
	},
}
