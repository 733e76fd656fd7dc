package pmq

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pmqwatch/lib/scrapers/twfy"
)

// SessionHeading is the major heading hansard files the weekly
// question session under.
const SessionHeading = "Prime Minister"

// OpeningPhrase is the clerk's formula that opens the session proper.
// Note the em dash, the transcripts always close the phrase with one.
const OpeningPhrase = "The Prime Minister was asked—"

// FirstQuestion is the canonical token of the tabled engagements
// question that leads every session.
const FirstQuestion = "Q1"

var engagementsPattern = regexp.MustCompile(`(?i)engagements|duties`)

// The locator's failure modes are distinct sentinels, a caller that
// gets one of these has a structurally surprising transcript on its
// hands and must not fall back to a silent default.
var (
	ErrNoSessionHeading = fmt.Errorf("no rows carry the %q heading", SessionHeading)
	ErrNoMainSection    = fmt.Errorf("could not find main PMQ section")
	ErrMissingQ1        = fmt.Errorf("could not find Q1 in PMQ section")
	ErrQ1NotEngagements = fmt.Errorf("Q1 does not appear to be the engagements question")
)

// Row is one contribution inside a located section, annotated with its
// position and role within the session.
type Row struct {
	twfy.Contribution
	// 0-based position within the section
	Sequence int
	// row carrying the clerk's opening formula
	StartsSession bool
	// row carrying the tabled Q1 engagements question
	IsEngagementQuestion bool
	// increments every time the question-vs-answer role flips, so a
	// question and the answers following it share a group
	QAGroup int
}

// Section is one located question session: a contiguous slice
// [Start, End] of the table it was extracted from.
type Section struct {
	Start int
	End   int
	Rows  []Row
}

// Locate finds the question session inside a flattened debate table.
// The session is the first contiguous run of session-heading rows that
// contains the opening formula, and it must hold a Q1 row whose text
// is the engagements question. Each structural surprise fails with its
// own sentinel.
func Locate(table twfy.ContributionTable) (Section, error) {
	var selected []int
	for i, rec := range table {
		if rec.MajorHeading != nil && *rec.MajorHeading == SessionHeading {
			selected = append(selected, i)
		}
	}
	if len(selected) == 0 {
		return Section{}, ErrNoSessionHeading
	}

	var chosen []int
	for _, run := range contiguousRuns(selected) {
		if runContainsPhrase(table, run, OpeningPhrase) {
			chosen = run
			break
		}
	}
	if chosen == nil {
		return Section{}, ErrNoMainSection
	}

	start := chosen[0]
	end := chosen[len(chosen)-1]

	q1 := -1
	for i := start; i <= end; i++ {
		if QuestionToken(table[i]) == FirstQuestion {
			q1 = i
			break
		}
	}
	if q1 < 0 {
		return Section{}, ErrMissingQ1
	}
	if table[q1].Body == nil || !engagementsPattern.MatchString(*table[q1].Body) {
		return Section{}, ErrQ1NotEngagements
	}

	return buildSection(table, start, end, q1), nil
}

// contiguousRuns splits ascending indices into maximal runs, breaking
// wherever consecutive indices differ by more than one.
func contiguousRuns(indices []int) [][]int {
	var runs [][]int
	runStart := 0
	for i := 1; i <= len(indices); i++ {
		if i == len(indices) || indices[i]-indices[i-1] > 1 {
			runs = append(runs, indices[runStart:i])
			runStart = i
		}
	}
	return runs
}

func runContainsPhrase(table twfy.ContributionTable, run []int, phrase string) bool {
	for _, i := range run {
		if table[i].Body != nil && strings.Contains(*table[i].Body, phrase) {
			return true
		}
	}
	return false
}

func buildSection(table twfy.ContributionTable, start, end, q1 int) Section {
	rows := make([]Row, 0, end-start+1)
	group := 0
	for i := start; i <= end; i++ {
		rec := table[i]
		row := Row{
			Contribution:         rec,
			Sequence:             i - start,
			StartsSession:        rec.Body != nil && strings.Contains(*rec.Body, OpeningPhrase),
			IsEngagementQuestion: i == q1,
		}
		if i > start && isQuestion(rec) != isQuestion(table[i-1]) {
			group++
		}
		row.QAGroup = group
		rows = append(rows, row)
	}
	return Section{Start: start, End: end, Rows: rows}
}

// isQuestion is the role used for question/answer grouping. Rows with
// an explicit oral question number asked something, everything else is
// treated as responding or procedural.
func isQuestion(rec twfy.Contribution) bool {
	return rec.HasOralQnum
}

// QuestionToken canonicalizes a contribution's oral question number
// into "Q<n>" form. The scraped attribute is a bare digit ("1") while
// the session convention writes "Q1", both map to the same token.
// Rows without a number return the empty string.
func QuestionToken(rec twfy.Contribution) string {
	if rec.OralQnum == nil {
		return ""
	}
	tok := strings.TrimSpace(*rec.OralQnum)
	if tok == "" {
		return ""
	}
	if tok[0] == 'Q' || tok[0] == 'q' {
		return "Q" + tok[1:]
	}
	return "Q" + tok
}

// QuestionOrdinal extracts the integer suffix of a canonical question
// token, false when the token does not have the "Q<n>" shape.
func QuestionOrdinal(token string) (int, bool) {
	if len(token) < 2 || token[0] != 'Q' {
		return 0, false
	}
	n, err := strconv.Atoi(token[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validation re-derives facts about an extracted section from the
// original table, independently of how Locate built it.
type Validation struct {
	// nearest major heading before the section, nil at the table edge
	PrecedingHeading *string
	// nearest major heading after the section, nil at the table edge
	FollowingHeading *string
	TotalRows        int
	// the section's indices form one unbroken integer run
	Continuous bool
}

// Validate cross-checks a section against the table it came from. A
// discontinuous section means the locator and the table disagree,
// which is returned as a hard error rather than a quiet flag.
func Validate(table twfy.ContributionTable, section Section) (Validation, error) {
	v := Validation{
		TotalRows:  len(section.Rows),
		Continuous: len(section.Rows) == section.End-section.Start+1,
	}
	for i, row := range section.Rows {
		if row.Sequence != i {
			v.Continuous = false
		}
	}

	for i := section.Start - 1; i >= 0; i-- {
		if table[i].MajorHeading != nil {
			v.PrecedingHeading = table[i].MajorHeading
			break
		}
	}
	for i := section.End + 1; i < len(table); i++ {
		if table[i].MajorHeading != nil {
			v.FollowingHeading = table[i].MajorHeading
			break
		}
	}

	if !v.Continuous {
		return v, fmt.Errorf("section rows do not form a continuous run over [%d, %d]", section.Start, section.End)
	}
	return v, nil
}
