package debates

import (
	"context"
	"testing"
	"time"

	"pmqwatch/lib/scrapers/twfy"
	"pmqwatch/lib/testutil"
	"pmqwatch/lib/timezone"
	"pmqwatch/services/debates/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func testBatch() twfy.Batch {
	day := timezone.Date(2025, time.January, 29)
	return twfy.Batch{
		RunID:       "testrun1",
		ProcessedAt: day.Add(13 * time.Hour),
		Results: []twfy.EditionResult{
			{
				Candidate: twfy.Candidate{Date: day, Edition: "a"},
				Table: twfy.ContributionTable{
					{
						ID:           "a.1",
						SpeakerName:  strPtr("Sarah Bool"),
						Type:         strPtr("Start Question"),
						Body:         strPtr("What are his engagements?"),
						Column:       intPtr(309),
						HasOralQnum:  true,
						OralQnum:     strPtr("1"),
						MajorHeading: strPtr("Prime Minister"),
					},
					{ID: "a.2"},
				},
			},
			{
				Candidate: twfy.Candidate{Date: day, Edition: "b"},
				Absent:    true,
			},
		},
	}
}

func TestServiceRoundTrip(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/debates",
		DbSchema: db.Schema,
	})
	defer cleanup()
	service := NewService(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	batch := testBatch()
	require.NoError(t, service.RecordBatch(ctx, batch))

	stored, rows, err := service.GetBatch(ctx, "testrun1")
	require.NoError(t, err)
	require.Equal(t, "2025-01-29", stored.StartDate)
	require.Equal(t, "2025-01-29", stored.EndDate)
	require.Equal(t, int64(1), stored.Fetched)
	require.Equal(t, int64(1), stored.Absent)
	require.Equal(t, int64(0), stored.Failed)

	require.Len(t, rows, 2)
	require.Equal(t, "a.1", rows[0].ID)
	require.Equal(t, "debates2025-01-29a", rows[0].SourceKey)
	require.Equal(t, "Sarah Bool", *rows[0].SpeakerName)
	require.Equal(t, 309, *rows[0].Column)
	require.True(t, rows[0].HasOralQnum)
	// absent fields come back as nil, not empty strings
	require.Nil(t, rows[1].SpeakerName)
	require.Nil(t, rows[1].Column)
	require.Nil(t, rows[1].Body)

	// the empty run id means the most recent batch
	latest, _, err := service.GetBatch(ctx, "")
	require.NoError(t, err)
	require.Equal(t, "testrun1", latest.RunID)
}

func TestRecordBatchUpsertsContributions(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/debates/upsert",
		DbSchema: db.Schema,
	})
	defer cleanup()
	service := NewService(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	batch := testBatch()
	require.NoError(t, service.RecordBatch(ctx, batch))

	// a second run over the same date range rewrites the same speech
	// ids instead of duplicating them
	batch.RunID = "testrun2"
	batch.Results[0].Table[0].Body = strPtr("What are his engagements, revised?")
	require.NoError(t, service.RecordBatch(ctx, batch))

	_, rows, err := service.GetBatch(ctx, "testrun2")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "What are his engagements, revised?", *rows[0].Body)

	// the first run no longer owns those rows
	_, rows, err = service.GetBatch(ctx, "testrun1")
	require.NoError(t, err)
	require.Empty(t, rows)
}
