package debates

import (
	"context"
	"database/sql"
	"time"

	"pmqwatch/lib/scrapers/twfy"
	"pmqwatch/services/debates/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/debates")

// Service is the durable ledger of fetch runs. CSV artifacts on disk
// are the working copy, this is the record of what was ingested when.
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

// RecordBatch stores one completed fetch run and every contribution it
// produced. Re-ingesting a row that was already stored overwrites it,
// so re-running a date range refreshes rather than duplicates.
func (s Service) RecordBatch(ctx context.Context, batch twfy.Batch) error {
	ctx, span := tracer.Start(ctx, "RecordBatch")
	defer span.End()

	span.SetAttributes(attribute.String("run_id", batch.RunID))

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(err)
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	fetched, absent, failed := batch.Counts()
	start, end, _ := batch.DateRange()
	err = txqry.CreateBatch(ctx, db.Batch{
		RunID:       batch.RunID,
		ProcessedAt: batch.ProcessedAt.Unix(),
		StartDate:   start.Format(time.DateOnly),
		EndDate:     end.Format(time.DateOnly),
		Fetched:     int64(fetched),
		Absent:      int64(absent),
		Failed:      int64(failed),
	})
	if err != nil {
		return fail(err)
	}

	for position, rec := range batch.Combined() {
		err := txqry.UpsertContribution(ctx, db.Contribution{
			SourceKey:    rec.SourceKey,
			SpeechID:     rec.ID,
			RunID:        batch.RunID,
			Position:     int64(position),
			SpeakerName:  nullString(rec.SpeakerName),
			PersonID:     nullString(rec.SpeakerID),
			SpeechType:   nullString(rec.Type),
			Body:         nullString(rec.Body),
			ColumnNumber: nullInt(rec.Column),
			SpokenAt:     nullString(rec.Time),
			OralHeading:  nullString(rec.OralHeading),
			MajorHeading: nullString(rec.MajorHeading),
			MinorHeading: nullString(rec.MinorHeading),
			HasOralQnum:  rec.HasOralQnum,
			OralQnum:     nullString(rec.OralQnum),
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

// GetBatch reads one stored run back out, runId may be empty to mean
// the most recent run.
func (s Service) GetBatch(ctx context.Context, runId string) (db.Batch, []twfy.SourcedContribution, error) {
	ctx, span := tracer.Start(ctx, "GetBatch")
	defer span.End()

	fail := func(err error) (db.Batch, []twfy.SourcedContribution, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.Batch{}, nil, err
	}

	var batch db.Batch
	var err error
	if runId == "" {
		batch, err = s.qry.GetLatestBatch(ctx)
	} else {
		batch, err = s.qry.GetBatch(ctx, runId)
	}
	if err != nil {
		return fail(err)
	}

	rows, err := s.qry.GetContributionsByRun(ctx, batch.RunID)
	if err != nil {
		return fail(err)
	}

	processedAt := time.Unix(batch.ProcessedAt, 0)
	out := make([]twfy.SourcedContribution, 0, len(rows))
	for _, row := range rows {
		out = append(out, twfy.SourcedContribution{
			Contribution: twfy.Contribution{
				ID:           row.SpeechID,
				SpeakerName:  optNullString(row.SpeakerName),
				SpeakerID:    optNullString(row.PersonID),
				Type:         optNullString(row.SpeechType),
				Body:         optNullString(row.Body),
				Column:       optNullInt(row.ColumnNumber),
				Time:         optNullString(row.SpokenAt),
				HasOralQnum:  row.HasOralQnum,
				OralQnum:     optNullString(row.OralQnum),
				OralHeading:  optNullString(row.OralHeading),
				MajorHeading: optNullString(row.MajorHeading),
				MinorHeading: optNullString(row.MinorHeading),
			},
			SourceKey:   row.SourceKey,
			ProcessedAt: processedAt,
		})
	}
	return batch, out, nil
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

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func optNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
