package twfy

import (
	"testing"
	"time"

	"pmqwatch/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestEnumerateCandidates(t *testing.T) {
	// 2025-01-27 is a monday, the range covers two wednesdays
	start := timezone.Date(2025, time.January, 27)
	end := timezone.Date(2025, time.February, 6)

	candidates := EnumerateCandidates(start, end)
	require.Len(t, candidates, 2*len(SubEditions))

	require.Equal(t, "debates2025-01-29a", candidates[0].Key())
	require.Equal(t, "debates2025-01-29h", candidates[7].Key())
	require.Equal(t, "debates2025-02-05a", candidates[8].Key())
	require.Equal(t, "debates2025-02-05h", candidates[15].Key())

	for _, cand := range candidates {
		require.Equal(t, time.Wednesday, cand.Date.Weekday())
	}
}

func TestEnumerateCandidatesEmptyRange(t *testing.T) {
	// thursday to tuesday, no wednesday in between
	start := timezone.Date(2025, time.January, 30)
	end := timezone.Date(2025, time.February, 4)
	require.Empty(t, EnumerateCandidates(start, end))
}

func TestEnumerateSingleDay(t *testing.T) {
	day := timezone.Date(2025, time.January, 29)
	candidates := EnumerateCandidates(day, day)
	require.Len(t, candidates, len(SubEditions))
	require.Equal(t, "a", candidates[0].Edition)
}

func TestCandidateFilename(t *testing.T) {
	cand := Candidate{Date: timezone.Date(2025, time.January, 29), Edition: "b"}
	require.Equal(t, "debates2025-01-29b.xml", cand.Filename())
}

func TestParseKey(t *testing.T) {
	cand, err := ParseKey("debates2025-01-29a")
	require.NoError(t, err)
	require.Equal(t, timezone.Date(2025, time.January, 29), cand.Date)
	require.Equal(t, "a", cand.Edition)

	_, err = ParseKey("wrans2025-01-29a")
	require.Error(t, err)
	_, err = ParseKey("debates2025-01-29")
	require.Error(t, err)
}
