package twfy

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"pmqwatch/lib/textutil"
)

// HeadingContext tracks the most recent heading of each kind seen while
// walking a debate document in order. The scraped xml is a flat element
// sequence, nesting is implied by heading elements interleaved between
// speeches.
type HeadingContext struct {
	Oral  *string
	Major *string
	Minor *string
}

// Apply returns the context advanced past one heading element. Value
// semantics: the receiver is copied, so snapshots already taken by
// earlier contributions never change when a later heading arrives.
func (c HeadingContext) Apply(tag, text string) HeadingContext {
	switch tag {
	case "oral-heading":
		c.Oral = optString(text)
	case "major-heading":
		c.Major = optString(text)
	case "minor-heading":
		c.Minor = optString(text)
	}
	return c
}

// Contribution is one speech element flattened into a record. Pointer
// fields are nil when the source attribute was missing or empty, the
// transcripts leave out most attributes most of the time.
type Contribution struct {
	ID          string
	SpeakerName *string
	SpeakerID   *string
	Type        *string
	Body        *string
	// column of the printed hansard edition, used as a sort proxy
	Column      *int
	Time        *string
	HasOralQnum bool
	OralQnum    *string

	OralHeading  *string
	MajorHeading *string
	MinorHeading *string
}

type ContributionTable []Contribution

// ParseDebateXML walks every element of a scraped debate document in
// document order, folding heading elements into a running context and
// extracting one Contribution per speech element. A document whose root
// carries latest="no" is a superseded revision and yields an empty
// table, that is a skip rather than a failure.
func ParseDebateXML(data []byte) (ContributionTable, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// publicwhip's scraper output predates xml 1.0 strictness, it
	// contains unescaped entities and the occasional stray close tag
	dec.Strict = false

	table := ContributionTable{}
	var context HeadingContext

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse debate xml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "publicwhip":
			if isSuperseded(start) {
				return ContributionTable{}, nil
			}
		case "oral-heading", "major-heading", "minor-heading":
			text, err := collectText(dec)
			if err != nil {
				return nil, fmt.Errorf("parse debate xml: %w", err)
			}
			context = context.Apply(start.Name.Local, text)
		case "speech":
			rec, err := extractSpeech(dec, start, context)
			if err != nil {
				return nil, fmt.Errorf("parse debate xml: %w", err)
			}
			table = append(table, rec)
		}
	}

	sortTable(table)
	return table, nil
}

func isSuperseded(root xml.StartElement) bool {
	for _, a := range root.Attr {
		if a.Name.Local == "latest" {
			return a.Value != "yes"
		}
	}
	return false
}

// extractSpeech reads the attributes off a speech element and collects
// the text of every paragraph under it, consuming tokens up to the
// matching end element. The heading context is captured by value at
// this point.
func extractSpeech(dec *xml.Decoder, start xml.StartElement, context HeadingContext) (Contribution, error) {
	rec := Contribution{
		ID:           attr(start, "id"),
		SpeakerName:  optAttr(start, "speakername"),
		SpeakerID:    optAttr(start, "person_id"),
		Type:         optAttr(start, "type"),
		Time:         optAttr(start, "time"),
		OralQnum:     optAttr(start, "oral-qnum"),
		OralHeading:  context.Oral,
		MajorHeading: context.Major,
		MinorHeading: context.Minor,
	}
	rec.HasOralQnum = rec.OralQnum != nil

	// an unparsable column number degrades to absent, it only ever
	// decides sort placement
	if col := attr(start, "colnum"); col != "" {
		n, err := strconv.Atoi(col)
		if err == nil {
			rec.Column = &n
		}
	}

	var paragraphs []string
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return Contribution{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				text, err := collectText(dec)
				if err != nil {
					return Contribution{}, err
				}
				if text != "" {
					paragraphs = append(paragraphs, text)
				}
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	body := strings.TrimSpace(strings.Join(paragraphs, " "))
	rec.Body = optString(body)
	return rec, nil
}

// collectText consumes the rest of the current element and returns the
// whitespace-collapsed text of it and all its descendants.
func collectText(dec *xml.Decoder) (string, error) {
	var buf strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			buf.Write(t)
		}
	}
	return textutil.Collapse(buf.String()), nil
}

// sortTable orders by printed column ascending with absent columns
// last, speech id breaks ties. When no row has a usable column this
// collapses into a plain id sort, ordering never fails outright.
func sortTable(table ContributionTable) {
	slices.SortStableFunc(table, func(a, b Contribution) int {
		if a.Column != nil && b.Column != nil {
			if *a.Column != *b.Column {
				if *a.Column < *b.Column {
					return -1
				}
				return 1
			}
			return strings.Compare(a.ID, b.ID)
		}
		if a.Column != nil {
			return -1
		}
		if b.Column != nil {
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func optAttr(el xml.StartElement, name string) *string {
	return optString(attr(el, name))
}

// empty strings and absent values are the same thing in this format
func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
