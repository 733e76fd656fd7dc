package twfy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const searchFixture = `{
	"info": {"total_results": 2},
	"rows": [
		{
			"gid": "2025-01-22a.309.4",
			"hdate": "2025-01-22",
			"htime": "12:00:00",
			"body": "<p>Q1. If he will list his official <b>engagements</b> for Wednesday 22 January. (<a href=\"/debates/?id=2025-01-22a.309.4\">902213</a>)</p>",
			"listurl": "/debates/?id=2025-01-22a.309.4",
			"speaker": {"name": "Sarah Bool", "party": "Conservative", "constituency": "South Northamptonshire"},
			"parent": {"body": "Prime Minister"}
		},
		{
			"gid": "2025-01-29a.309.3",
			"hdate": "2025-01-29",
			"htime": "11:30:00",
			"body": "The Prime Minister was asked&#8212;",
			"listurl": "/debates/?id=2025-01-29a.309.3",
			"speaker": [],
			"parent": {"body": "Prime Minister"}
		}
	]
}`

func TestParseSearchResponse(t *testing.T) {
	hits, err := parseSearchResponse(context.Background(), []byte(searchFixture))
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// newest date first
	require.Equal(t, "2025-01-29", hits[0].Date)
	require.Equal(t, "2025-01-22", hits[1].Date)

	// the empty-array speaker decodes to absent fields
	require.Nil(t, hits[0].SpeakerName)

	question := hits[1]
	require.Equal(t, "Sarah Bool", *question.SpeakerName)
	require.Equal(t, "Conservative", *question.Party)
	require.Equal(t, "Prime Minister", *question.Section)
	// markup stripped from the snippet body
	require.Equal(t, "Q1. If he will list his official engagements for Wednesday 22 January. (902213)", question.Body)
	require.Len(t, question.Links, 1)
	require.Equal(t, "/debates/?id=2025-01-22a.309.4", question.Links[0].Href)
}

func TestParseSearchResponseError(t *testing.T) {
	_, err := parseSearchResponse(context.Background(), []byte(`{"error": "Invalid API key"}`))
	require.ErrorContains(t, err, "Invalid API key")

	_, err = parseSearchResponse(context.Background(), []byte(`not json`))
	require.Error(t, err)
}

func TestSearchRequiresApiKey(t *testing.T) {
	client, err := NewClient(ClientOptions{})
	require.NoError(t, err)

	_, err = client.SearchDebates(context.Background(), "", SearchOptions{})
	require.ErrorIs(t, err, ErrMissingApiKey)
}
