package pmq

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"pmqwatch/lib/timezone"
	"pmqwatch/services/pmq/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/pmq")

// Service persists located sections and their analysis so the report
// command can render past sittings without refetching anything.
type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

type RecordSectionParams struct {
	SittingDate time.Time
	// the edition the section was located in
	SourceKey  string
	Section    Section
	Validation Validation
	Report     Report
}

// RecordSection stores one located sitting, replacing whatever was
// stored for that date before. The section header and its rows commit
// together or not at all.
func (s Service) RecordSection(ctx context.Context, params RecordSectionParams) error {
	ctx, span := tracer.Start(ctx, "RecordSection")
	defer span.End()

	date := params.SittingDate.Format(time.DateOnly)
	span.SetAttributes(attribute.String("sitting_date", date))

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	questionNumbers, err := json.Marshal(params.Report.QuestionNumbers)
	if err != nil {
		return fail(err)
	}
	missing, err := json.Marshal(params.Report.MissingQuestionNumbers)
	if err != nil {
		return fail(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(err)
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.UpsertSection(ctx, db.Section{
		SittingDate:      date,
		SourceKey:        params.SourceKey,
		StartIndex:       int64(params.Section.Start),
		EndIndex:         int64(params.Section.End),
		LocatedAt:        timezone.Now().Unix(),
		PrecedingHeading: nullString(params.Validation.PrecedingHeading),
		FollowingHeading: nullString(params.Validation.FollowingHeading),
		TotalRows:        int64(params.Report.TotalRows),
		NumQuestions:     int64(params.Report.NumQuestions),
		NumSpeakers:      int64(params.Report.NumSpeakers),
		QuestionNumbers:  string(questionNumbers),
		SequenceComplete: params.Report.QuestionSequenceComplete,
		MissingNumbers:   string(missing),
	})
	if err != nil {
		return fail(err)
	}

	err = txqry.DeleteSectionRows(ctx, date)
	if err != nil {
		return fail(err)
	}
	for _, row := range params.Section.Rows {
		err := txqry.CreateSectionRow(ctx, db.SectionRow{
			SittingDate:          date,
			Sequence:             int64(row.Sequence),
			SpeechID:             row.ID,
			SpeakerName:          nullString(row.SpeakerName),
			SpeechType:           nullString(row.Type),
			Body:                 nullString(row.Body),
			OralQnum:             nullString(row.OralQnum),
			StartsSession:        row.StartsSession,
			IsEngagementQuestion: row.IsEngagementQuestion,
			QaGroup:              int64(row.QAGroup),
		})
		if err != nil {
			return fail(err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fail(err)
	}
	return nil
}

// StoredSection is one sitting read back out of the ledger.
type StoredSection struct {
	SittingDate      string
	SourceKey        string
	Start            int
	End              int
	PrecedingHeading *string
	FollowingHeading *string
	TotalRows        int
	NumQuestions     int
	NumSpeakers      int
	QuestionNumbers  []string
	SequenceComplete bool
	MissingNumbers   []int
	Rows             []db.SectionRow
}

func (s Service) GetSection(ctx context.Context, sittingDate time.Time) (StoredSection, error) {
	ctx, span := tracer.Start(ctx, "GetSection")
	defer span.End()

	date := sittingDate.Format(time.DateOnly)
	span.SetAttributes(attribute.String("sitting_date", date))

	fail := func(err error) (StoredSection, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return StoredSection{}, err
	}

	section, err := s.qry.GetSection(ctx, date)
	if err != nil {
		return fail(err)
	}
	rows, err := s.qry.GetSectionRows(ctx, date)
	if err != nil {
		return fail(err)
	}

	out := StoredSection{
		SittingDate:      section.SittingDate,
		SourceKey:        section.SourceKey,
		Start:            int(section.StartIndex),
		End:              int(section.EndIndex),
		PrecedingHeading: optNullString(section.PrecedingHeading),
		FollowingHeading: optNullString(section.FollowingHeading),
		TotalRows:        int(section.TotalRows),
		NumQuestions:     int(section.NumQuestions),
		NumSpeakers:      int(section.NumSpeakers),
		SequenceComplete: section.SequenceComplete,
		Rows:             rows,
	}
	err = json.Unmarshal([]byte(section.QuestionNumbers), &out.QuestionNumbers)
	if err != nil {
		return fail(err)
	}
	err = json.Unmarshal([]byte(section.MissingNumbers), &out.MissingNumbers)
	if err != nil {
		return fail(err)
	}
	return out, nil
}

func (s Service) ListSittingDates(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "ListSittingDates")
	defer span.End()

	dates, err := s.qry.ListSectionDates(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return dates, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func optNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
