package commands

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"pmqwatch/lib/scrapers/twfy"
	"pmqwatch/lib/timezone"

	"github.com/jedib0t/go-pretty/v6/table"
)

// keyFromFilename recovers the edition a per-edition artifact holds,
// e.g. "data/debates_raw/debates2025-01-29a.csv".
func keyFromFilename(path string) (twfy.Candidate, error) {
	base := filepath.Base(path)
	return twfy.ParseKey(strings.TrimSuffix(base, filepath.Ext(base)))
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func parseDateFlag(value string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, value, timezone.Location)
}

func orDash(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
