package db

import "database/sql"

type Batch struct {
	RunID       string
	ProcessedAt int64
	StartDate   string
	EndDate     string
	Fetched     int64
	Absent      int64
	Failed      int64
}

type Contribution struct {
	SourceKey    string
	SpeechID     string
	RunID        string
	Position     int64
	SpeakerName  sql.NullString
	PersonID     sql.NullString
	SpeechType   sql.NullString
	Body         sql.NullString
	ColumnNumber sql.NullInt64
	SpokenAt     sql.NullString
	OralHeading  sql.NullString
	MajorHeading sql.NullString
	MinorHeading sql.NullString
	HasOralQnum  bool
	OralQnum     sql.NullString
}
