package twfy

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"pmqwatch/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSearchQuery matches the standing order wording used for the
// weekly engagements question.
const DefaultSearchQuery = "Prime Minister Engagements"

var ErrMissingApiKey = fmt.Errorf("a theyworkforyou api key is required")

type SearchOptions struct {
	// defaults to DefaultSearchQuery
	Query string
	// defaults to 100
	Num  int
	Page int
}

// SearchHit is one row of a getDebates api response with the html
// markup stripped back out of it.
type SearchHit struct {
	GID          string
	Date         string
	Time         *string
	SpeakerName  *string
	Party        *string
	Constituency *string
	// the heading of the section the hit falls under
	Section *string
	Body    string
	ListUrl string
	// inline citations kept from the body markup
	Links []htmlutil.Anchor
}

type searchResponse struct {
	Error string `json:"error"`
	Info  struct {
		TotalResults int `json:"total_results"`
	} `json:"info"`
	Rows []searchRow `json:"rows"`
}

type searchRow struct {
	GID     string `json:"gid"`
	HDate   string `json:"hdate"`
	HTime   string `json:"htime"`
	Body    string `json:"body"`
	ListUrl string `json:"listurl"`
	// the api emits an empty array instead of an object when no
	// speaker is attached to a row, so this cannot decode directly
	Speaker json.RawMessage `json:"speaker"`
	Parent  struct {
		Body string `json:"body"`
	} `json:"parent"`
}

type searchSpeaker struct {
	Name         string `json:"name"`
	Party        string `json:"party"`
	Constituency string `json:"constituency"`
}

// SearchDebates queries the theyworkforyou getDebates api. This is the
// interactive discovery path, the bulk pipeline goes straight to the
// scraped xml instead.
func (c *Client) SearchDebates(ctx context.Context, apiKey string, opts SearchOptions) ([]SearchHit, error) {
	ctx, span := tracer.Start(ctx, "SearchDebates")
	defer span.End()

	if apiKey == "" {
		return nil, ErrMissingApiKey
	}
	if opts.Query == "" {
		opts.Query = DefaultSearchQuery
	}
	if opts.Num <= 0 {
		opts.Num = 100
	}

	c.waitTurn()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":    apiKey,
			"type":   "commons",
			"search": opts.Query,
			"num":    strconv.Itoa(opts.Num),
			"page":   strconv.Itoa(opts.Page),
			// order by date, newest first
			"order": "d",
		}).
		Get("/api/getDebates")
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("getDebates: status %s", res.Status())
	}

	return parseSearchResponse(ctx, res.Body())
}

func parseSearchResponse(ctx context.Context, data []byte) ([]SearchHit, error) {
	var resp searchResponse
	err := json.Unmarshal(data, &resp)
	if err != nil {
		return nil, fmt.Errorf("decode getDebates response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("getDebates: %s", resp.Error)
	}

	hits := make([]SearchHit, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		var speaker searchSpeaker
		if len(row.Speaker) > 0 {
			// best effort, see the note on searchRow.Speaker
			json.Unmarshal(row.Speaker, &speaker)
		}

		hit := SearchHit{
			GID:          row.GID,
			Date:         row.HDate,
			Time:         optString(row.HTime),
			SpeakerName:  optString(speaker.Name),
			Party:        optString(speaker.Party),
			Constituency: optString(speaker.Constituency),
			Section:      optString(htmlutil.StripTags(row.Parent.Body)),
			Body:         htmlutil.StripTags(row.Body),
			ListUrl:      row.ListUrl,
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(row.Body))
		if err == nil {
			hit.Links = htmlutil.GetAnchors(ctx, doc.Find("a"))
		}

		hits = append(hits, hit)
	}

	// newest sitting first, within a sitting keep spoken order
	slices.SortStableFunc(hits, func(a, b SearchHit) int {
		if c := strings.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		if a.Time != nil && b.Time != nil {
			return strings.Compare(*a.Time, *b.Time)
		}
		if a.Time != nil {
			return -1
		}
		if b.Time != nil {
			return 1
		}
		return 0
	})

	return hits, nil
}
