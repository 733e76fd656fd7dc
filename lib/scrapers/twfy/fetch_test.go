package twfy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pmqwatch/lib/timezone"

	"github.com/stretchr/testify/require"
)

// fakeSource serves editions from memory, anything not listed is
// absent. keys in failing return a synthetic transport error.
type fakeSource struct {
	mu      sync.Mutex
	tables  map[string]ContributionTable
	failing map[string]bool
	calls   []string
}

func (s *fakeSource) FetchDebate(ctx context.Context, cand Candidate) (ContributionTable, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cand.Key())
	s.mu.Unlock()

	if s.failing[cand.Key()] {
		return nil, fmt.Errorf("connection reset")
	}
	table, ok := s.tables[cand.Key()]
	if !ok {
		return nil, ErrDebateNotFound
	}
	return table, nil
}

func candidatesFor(dates ...time.Time) []Candidate {
	var out []Candidate
	for _, d := range dates {
		for _, letter := range SubEditions {
			out = append(out, Candidate{Date: d, Edition: letter})
		}
	}
	return out
}

func singleRowTable(id string) ContributionTable {
	return ContributionTable{{ID: id, Body: strPtr("words")}}
}

func TestFetchAllOrderAndCounts(t *testing.T) {
	jan29 := timezone.Date(2025, time.January, 29)
	feb05 := timezone.Date(2025, time.February, 5)
	candidates := candidatesFor(jan29, feb05)

	src := &fakeSource{
		tables: map[string]ContributionTable{
			// present out of enumeration order on purpose
			"debates2025-02-05a": singleRowTable("feb.1"),
			"debates2025-01-29a": singleRowTable("jan.1"),
			"debates2025-01-29b": singleRowTable("jan.2"),
		},
		failing: map[string]bool{
			"debates2025-02-05c": true,
		},
	}

	batch, err := FetchAll(context.Background(), src, candidates, FetchOptions{Concurrency: 3})
	require.NoError(t, err)
	require.Len(t, batch.Results, len(candidates))
	require.NotEmpty(t, batch.RunID)

	fetched, absent, failed := batch.Counts()
	require.Equal(t, 3, fetched)
	require.Equal(t, 12, absent)
	require.Equal(t, 1, failed)

	// combined rows keep candidate order regardless of completion
	// order, absent and failed candidates just drop out
	combined := batch.Combined()
	require.Len(t, combined, 3)
	require.Equal(t, "jan.1", combined[0].ID)
	require.Equal(t, "jan.2", combined[1].ID)
	require.Equal(t, "feb.1", combined[2].ID)
	require.Equal(t, "debates2025-01-29a", combined[0].SourceKey)
	for _, rec := range combined {
		require.True(t, rec.ProcessedAt.Equal(batch.ProcessedAt))
	}

	start, end, ok := batch.DateRange()
	require.True(t, ok)
	require.Equal(t, jan29, start)
	require.Equal(t, feb05, end)
}

func TestFetchAllFailureIsolation(t *testing.T) {
	day := timezone.Date(2025, time.January, 29)
	candidates := candidatesFor(day)

	src := &fakeSource{
		tables: map[string]ContributionTable{
			"debates2025-01-29b": singleRowTable("b.1"),
		},
		failing: map[string]bool{
			"debates2025-01-29a": true,
		},
	}

	batch, err := FetchAll(context.Background(), src, candidates, FetchOptions{Concurrency: 2})
	require.NoError(t, err)

	// the failing sibling did not stop any other candidate
	require.Len(t, src.calls, len(candidates))
	require.Error(t, batch.Results[0].Err)
	require.Equal(t, "b.1", batch.Results[1].Table[0].ID)
}

func TestFetchAllPersistsEditions(t *testing.T) {
	day := timezone.Date(2025, time.January, 29)
	candidates := candidatesFor(day)
	dir := t.TempDir()

	src := &fakeSource{
		tables: map[string]ContributionTable{
			"debates2025-01-29a": singleRowTable("a.1"),
			// a superseded revision parses to an empty table and
			// must not leave an artifact behind
			"debates2025-01-29b": {},
		},
	}

	_, err := FetchAll(context.Background(), src, candidates, FetchOptions{
		Concurrency: 2,
		OutputDir:   dir,
	})
	require.NoError(t, err)

	table, err := ReadContributionsCSV(filepath.Join(dir, "debates2025-01-29a.csv"))
	require.NoError(t, err)
	require.Len(t, table, 1)

	_, err = os.Stat(filepath.Join(dir, "debates2025-01-29b.csv"))
	require.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestEmptyBatch(t *testing.T) {
	batch := Batch{}
	_, _, ok := batch.DateRange()
	require.False(t, ok)
	require.Empty(t, batch.Combined())
}
