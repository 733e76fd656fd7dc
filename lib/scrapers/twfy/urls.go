package twfy

import (
	"fmt"
	"strings"
	"time"

	"pmqwatch/lib/timezone"
)

// SubEditions are the letter suffixes publicwhip appends to a day's
// debate transcript. Revisions and late sittings push the letter up,
// in practice almost every day only has a few of these.
var SubEditions = []string{"a", "b", "c", "d", "e", "f", "g", "h"}

// Candidate identifies one debate edition that may exist on the server:
// a sitting date plus a sub-edition letter.
type Candidate struct {
	Date    time.Time
	Edition string
}

// Key is the canonical identifier of the edition, it doubles as the
// remote filename stem, e.g. "debates2025-01-29a".
func (c Candidate) Key() string {
	return fmt.Sprintf("debates%s%s", c.Date.Format("2006-01-02"), c.Edition)
}

func (c Candidate) Filename() string {
	return c.Key() + ".xml"
}

// ParseKey recovers a candidate from its canonical identifier, the
// inverse of Key.
func ParseKey(key string) (Candidate, error) {
	rest, ok := strings.CutPrefix(key, "debates")
	if !ok || len(rest) != len("2006-01-02")+1 {
		return Candidate{}, fmt.Errorf("malformed edition key %q", key)
	}
	date, err := time.ParseInLocation("2006-01-02", rest[:len(rest)-1], timezone.Location)
	if err != nil {
		return Candidate{}, fmt.Errorf("malformed edition key %q: %w", key, err)
	}
	return Candidate{Date: date, Edition: rest[len(rest)-1:]}, nil
}

// EnumerateCandidates lists every edition worth requesting between
// start and end inclusive. The question session only sits on
// Wednesdays, so other days are skipped outright. Output ascends by
// date then sub-edition letter and is deliberately over-generative,
// most letters will not exist for most dates.
func EnumerateCandidates(start, end time.Time) []Candidate {
	day := timezone.Date(start.Year(), start.Month(), start.Day())
	last := timezone.Date(end.Year(), end.Month(), end.Day())

	var out []Candidate
	for !day.After(last) {
		if day.Weekday() == time.Wednesday {
			for _, letter := range SubEditions {
				out = append(out, Candidate{Date: day, Edition: letter})
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}
