package twfy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

const debateFixture = `<?xml version="1.0" encoding="ISO-8859-1"?>
<publicwhip scraperversion="b" latest="yes">
<oral-heading id="uk.org.publicwhip/debate/2025-01-29a.309.0" nospeaker="true" colnum="309" time="11:30:00">Oral Answers to Questions</oral-heading>
<major-heading id="uk.org.publicwhip/debate/2025-01-29a.309.1" nospeaker="true" colnum="309" time="11:30:00">
	Prime Minister
</major-heading>
<minor-heading id="uk.org.publicwhip/debate/2025-01-29a.309.2" nospeaker="true" colnum="309" time="11:30:00">Engagements</minor-heading>
<speech id="uk.org.publicwhip/debate/2025-01-29a.309.3" nospeaker="true" colnum="309" time="11:30:00">
	<p pid="a309.3/1">The Prime Minister was asked&#8212;</p>
</speech>
<speech id="uk.org.publicwhip/debate/2025-01-29a.309.4" speakername="Sarah Bool" person_id="uk.org.publicwhip/person/26533" oral-qnum="1" colnum="309" time="11:30:00" type="Start Question">
	<p pid="a309.4/1" qnum="1">Q1. If he will list his official
		engagements for Wednesday 29 January.</p>
</speech>
<speech id="uk.org.publicwhip/debate/2025-01-29a.309.5" speakername="Keir Starmer" person_id="uk.org.publicwhip/person/10426" colnum="310" time="11:30:00" type="Answer">
	<p pid="a309.5/1">This morning I had meetings with ministerial colleagues and others.</p>
	<p pid="a309.5/2">In addition to my duties in this House, I shall have further such meetings later today.</p>
</speech>
</publicwhip>`

func TestParseDebate(t *testing.T) {
	table, err := ParseDebateXML([]byte(debateFixture))
	require.NoError(t, err)
	require.Len(t, table, 3)

	opener := table[0]
	require.Equal(t, "uk.org.publicwhip/debate/2025-01-29a.309.3", opener.ID)
	require.Nil(t, opener.SpeakerName)
	require.Nil(t, opener.OralQnum)
	require.False(t, opener.HasOralQnum)
	require.Equal(t, "The Prime Minister was asked—", *opener.Body)

	question := table[1]
	expected := Contribution{
		ID:           "uk.org.publicwhip/debate/2025-01-29a.309.4",
		SpeakerName:  strPtr("Sarah Bool"),
		SpeakerID:    strPtr("uk.org.publicwhip/person/26533"),
		Type:         strPtr("Start Question"),
		Body:         strPtr("Q1. If he will list his official engagements for Wednesday 29 January."),
		Column:       intPtr(309),
		Time:         strPtr("11:30:00"),
		HasOralQnum:  true,
		OralQnum:     strPtr("1"),
		OralHeading:  strPtr("Oral Answers to Questions"),
		MajorHeading: strPtr("Prime Minister"),
		MinorHeading: strPtr("Engagements"),
	}
	if diff := cmp.Diff(expected, question); diff != "" {
		t.Fatalf("unexpected contribution (-want +got):\n%s", diff)
	}

	answer := table[2]
	require.Equal(t, "Answer", *answer.Type)
	require.Equal(t, 310, *answer.Column)
	// both paragraphs joined with a single space
	require.Equal(t,
		"This morning I had meetings with ministerial colleagues and others. In addition to my duties in this House, I shall have further such meetings later today.",
		*answer.Body)
}

func TestHeadingSnapshotIsolation(t *testing.T) {
	doc := `<publicwhip latest="yes">
<major-heading id="h1">First Business</major-heading>
<speech id="s1"><p>one</p></speech>
<major-heading id="h2">Second Business</major-heading>
<speech id="s2"><p>two</p></speech>
</publicwhip>`

	table, err := ParseDebateXML([]byte(doc))
	require.NoError(t, err)
	require.Len(t, table, 2)
	// the heading seen after s1 was emitted must not leak backwards
	require.Equal(t, "First Business", *table[0].MajorHeading)
	require.Equal(t, "Second Business", *table[1].MajorHeading)
	require.Nil(t, table[0].OralHeading)
	require.Nil(t, table[0].MinorHeading)
}

func TestEmittedCountMatchesSpeechElements(t *testing.T) {
	doc := `<publicwhip latest="yes">
<speech id="s1"></speech>
<major-heading id="h1">Business</major-heading>
<speech id="s2"><p></p></speech>
<speech id="s3"><p>text</p><p>more</p></speech>
</publicwhip>`

	table, err := ParseDebateXML([]byte(doc))
	require.NoError(t, err)
	// every speech emits a record even when it has no paragraph text
	require.Len(t, table, 3)
	require.Nil(t, table[0].Body)
	require.Nil(t, table[1].Body)
	require.Equal(t, "text more", *table[2].Body)
}

func TestSupersededDocument(t *testing.T) {
	doc := `<publicwhip scraperversion="b" latest="no">
<speech id="s1"><p>should never appear</p></speech>
</publicwhip>`

	table, err := ParseDebateXML([]byte(doc))
	require.NoError(t, err)
	require.Empty(t, table)
}

func TestMalformedDocument(t *testing.T) {
	_, err := ParseDebateXML([]byte(`<publicwhip latest="yes"><speech id="a"`))
	require.Error(t, err)
}

func TestSortByColumnThenID(t *testing.T) {
	doc := `<publicwhip latest="yes">
<speech id="c" colnum="2"><p>x</p></speech>
<speech id="b"><p>no column</p></speech>
<speech id="a" colnum="1"><p>x</p></speech>
<speech id="d" colnum="1"><p>x</p></speech>
<speech id="e" colnum="oops"><p>bad column</p></speech>
</publicwhip>`

	table, err := ParseDebateXML([]byte(doc))
	require.NoError(t, err)

	var ids []string
	for _, rec := range table {
		ids = append(ids, rec.ID)
	}
	// columns ascending, id breaks ties, rows without a usable column at
	// the end in id order
	require.Equal(t, []string{"a", "d", "c", "b", "e"}, ids)
	require.Nil(t, table[4].Column)
}

func TestSortFallsBackToIDOnly(t *testing.T) {
	doc := `<publicwhip latest="yes">
<speech id="z"><p>x</p></speech>
<speech id="m"><p>x</p></speech>
<speech id="a"><p>x</p></speech>
</publicwhip>`

	table, err := ParseDebateXML([]byte(doc))
	require.NoError(t, err)

	var ids []string
	for _, rec := range table {
		ids = append(ids, rec.ID)
	}
	require.Equal(t, []string{"a", "m", "z"}, ids)
}

func TestEmptyAttributesAreAbsent(t *testing.T) {
	doc := `<publicwhip latest="yes">
<speech id="s1" speakername="" type="" colnum=""><p>words</p></speech>
</publicwhip>`

	table, err := ParseDebateXML([]byte(doc))
	require.NoError(t, err)
	require.Len(t, table, 1)
	require.Nil(t, table[0].SpeakerName)
	require.Nil(t, table[0].Type)
	require.Nil(t, table[0].Column)
}
