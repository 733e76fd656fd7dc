package twfy

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// column layout shared by the per-edition artifacts and the combined
// output file, the combined file appends provenance columns on the end
var csvHeader = []string{
	"speech_id",
	"speaker_name",
	"person_id",
	"speech_type",
	"text",
	"column_number",
	"time",
	"oral_heading",
	"major_heading",
	"minor_heading",
	"has_oral_qnum",
	"oral_qnum",
}

var combinedCsvHeader = append(append([]string{}, csvHeader...), "source_key", "processed_at")

// SourcedContribution is a contribution stamped with where it came
// from and when the batch that produced it ran.
type SourcedContribution struct {
	Contribution
	SourceKey   string
	ProcessedAt time.Time
}

// WriteContributionsCSV writes one edition's table to disk. Absent
// fields become empty cells, reading them back restores nil rather
// than the empty string.
func WriteContributionsCSV(path string, table ContributionTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Write(csvHeader)
	for _, rec := range table {
		w.Write(contributionRow(rec))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadContributionsCSV(path string) (ContributionTable, error) {
	rows, idx, err := readCsvRows(path)
	if err != nil {
		return nil, err
	}

	table := make(ContributionTable, 0, len(rows))
	for _, row := range rows {
		table = append(table, contributionFromRow(row, idx))
	}
	return table, nil
}

func WriteCombinedCSV(path string, rows []SourcedContribution) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Write(combinedCsvHeader)
	for _, rec := range rows {
		row := contributionRow(rec.Contribution)
		row = append(row, rec.SourceKey, rec.ProcessedAt.Format(time.RFC3339))
		w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadCombinedCSV(path string) ([]SourcedContribution, error) {
	rows, idx, err := readCsvRows(path)
	if err != nil {
		return nil, err
	}

	out := make([]SourcedContribution, 0, len(rows))
	for _, row := range rows {
		rec := SourcedContribution{
			Contribution: contributionFromRow(row, idx),
			SourceKey:    cell(row, idx, "source_key"),
		}
		if raw := cell(row, idx, "processed_at"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, fmt.Errorf("read %s: bad processed_at %q", path, raw)
			}
			rec.ProcessedAt = t
		}
		out = append(out, rec)
	}
	return out, nil
}

func readCsvRows(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("read %s: missing header row", path)
	}

	idx := map[string]int{}
	for i, name := range records[0] {
		idx[name] = i
	}
	return records[1:], idx, nil
}

func contributionRow(rec Contribution) []string {
	col := ""
	if rec.Column != nil {
		col = strconv.Itoa(*rec.Column)
	}
	return []string{
		rec.ID,
		strOrEmpty(rec.SpeakerName),
		strOrEmpty(rec.SpeakerID),
		strOrEmpty(rec.Type),
		strOrEmpty(rec.Body),
		col,
		strOrEmpty(rec.Time),
		strOrEmpty(rec.OralHeading),
		strOrEmpty(rec.MajorHeading),
		strOrEmpty(rec.MinorHeading),
		strconv.FormatBool(rec.HasOralQnum),
		strOrEmpty(rec.OralQnum),
	}
}

func contributionFromRow(row []string, idx map[string]int) Contribution {
	rec := Contribution{
		ID:           cell(row, idx, "speech_id"),
		SpeakerName:  optString(cell(row, idx, "speaker_name")),
		SpeakerID:    optString(cell(row, idx, "person_id")),
		Type:         optString(cell(row, idx, "speech_type")),
		Body:         optString(cell(row, idx, "text")),
		Time:         optString(cell(row, idx, "time")),
		OralHeading:  optString(cell(row, idx, "oral_heading")),
		MajorHeading: optString(cell(row, idx, "major_heading")),
		MinorHeading: optString(cell(row, idx, "minor_heading")),
		OralQnum:     optString(cell(row, idx, "oral_qnum")),
	}
	// a malformed number degrades to absent the same way parsing does
	if raw := cell(row, idx, "column_number"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil {
			rec.Column = &n
		}
	}
	has, err := strconv.ParseBool(cell(row, idx, "has_oral_qnum"))
	if err == nil {
		rec.HasOralQnum = has
	} else {
		rec.HasOralQnum = rec.OralQnum != nil
	}
	return rec
}

func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
