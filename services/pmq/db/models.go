package db

import "database/sql"

type Section struct {
	SittingDate      string
	SourceKey        string
	StartIndex       int64
	EndIndex         int64
	LocatedAt        int64
	PrecedingHeading sql.NullString
	FollowingHeading sql.NullString
	TotalRows        int64
	NumQuestions     int64
	NumSpeakers      int64
	QuestionNumbers  string
	SequenceComplete bool
	MissingNumbers   string
}

type SectionRow struct {
	SittingDate          string
	Sequence             int64
	SpeechID             string
	SpeakerName          sql.NullString
	SpeechType           sql.NullString
	Body                 sql.NullString
	OralQnum             sql.NullString
	StartsSession        bool
	IsEngagementQuestion bool
	QaGroup              int64
}
