package pmq

import (
	"context"
	"testing"
	"time"

	"pmqwatch/lib/testutil"
	"pmqwatch/lib/timezone"
	"pmqwatch/services/pmq/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestService(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/pmq",
		DbSchema: db.Schema,
	})
	defer cleanup()
	service := NewService(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	table := sessionTable()
	section, err := Locate(table)
	require.NoError(t, err)
	validation, err := Validate(table, section)
	require.NoError(t, err)
	report := Analyze(section)

	sittingDate := timezone.Date(2025, time.January, 29)
	params := RecordSectionParams{
		SittingDate: sittingDate,
		SourceKey:   "debates2025-01-29a",
		Section:     section,
		Validation:  validation,
		Report:      report,
	}
	require.NoError(t, service.RecordSection(ctx, params))

	stored, err := service.GetSection(ctx, sittingDate)
	require.NoError(t, err)
	require.Equal(t, "2025-01-29", stored.SittingDate)
	require.Equal(t, "debates2025-01-29a", stored.SourceKey)
	require.Equal(t, section.Start, stored.Start)
	require.Equal(t, section.End, stored.End)
	require.Equal(t, report.QuestionNumbers, stored.QuestionNumbers)
	require.Equal(t, report.NumSpeakers, stored.NumSpeakers)
	require.True(t, stored.SequenceComplete)
	require.Equal(t, "Points of Order", *stored.PrecedingHeading)
	require.Len(t, stored.Rows, len(section.Rows))
	require.Equal(t, "pmq.0", stored.Rows[0].SpeechID)
	require.True(t, stored.Rows[0].StartsSession)
	require.True(t, stored.Rows[1].IsEngagementQuestion)

	// storing the same sitting again replaces, never duplicates
	require.NoError(t, service.RecordSection(ctx, params))
	stored, err = service.GetSection(ctx, sittingDate)
	require.NoError(t, err)
	require.Len(t, stored.Rows, len(section.Rows))

	dates, err := service.ListSittingDates(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"2025-01-29"}, dates)
}
