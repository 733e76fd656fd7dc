package db

import (
	"context"
)

const createBatch = `
INSERT INTO batches (run_id, processed_at, start_date, end_date, fetched, absent, failed)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateBatchParams = Batch

func (q *Queries) CreateBatch(ctx context.Context, arg CreateBatchParams) error {
	_, err := q.db.ExecContext(ctx, createBatch,
		arg.RunID,
		arg.ProcessedAt,
		arg.StartDate,
		arg.EndDate,
		arg.Fetched,
		arg.Absent,
		arg.Failed,
	)
	return err
}

const getBatch = `
SELECT run_id, processed_at, start_date, end_date, fetched, absent, failed
FROM batches WHERE run_id = ?
`

func (q *Queries) GetBatch(ctx context.Context, runId string) (Batch, error) {
	row := q.db.QueryRowContext(ctx, getBatch, runId)
	var i Batch
	err := row.Scan(
		&i.RunID,
		&i.ProcessedAt,
		&i.StartDate,
		&i.EndDate,
		&i.Fetched,
		&i.Absent,
		&i.Failed,
	)
	return i, err
}

const getLatestBatch = `
SELECT run_id, processed_at, start_date, end_date, fetched, absent, failed
FROM batches ORDER BY processed_at DESC LIMIT 1
`

func (q *Queries) GetLatestBatch(ctx context.Context) (Batch, error) {
	row := q.db.QueryRowContext(ctx, getLatestBatch)
	var i Batch
	err := row.Scan(
		&i.RunID,
		&i.ProcessedAt,
		&i.StartDate,
		&i.EndDate,
		&i.Fetched,
		&i.Absent,
		&i.Failed,
	)
	return i, err
}

const upsertContribution = `
INSERT INTO contributions (
    source_key, speech_id, run_id, position, speaker_name, person_id,
    speech_type, body, column_number, spoken_at, oral_heading,
    major_heading, minor_heading, has_oral_qnum, oral_qnum
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (source_key, speech_id) DO UPDATE SET
    run_id = excluded.run_id,
    position = excluded.position,
    speaker_name = excluded.speaker_name,
    person_id = excluded.person_id,
    speech_type = excluded.speech_type,
    body = excluded.body,
    column_number = excluded.column_number,
    spoken_at = excluded.spoken_at,
    oral_heading = excluded.oral_heading,
    major_heading = excluded.major_heading,
    minor_heading = excluded.minor_heading,
    has_oral_qnum = excluded.has_oral_qnum,
    oral_qnum = excluded.oral_qnum
`

type UpsertContributionParams = Contribution

func (q *Queries) UpsertContribution(ctx context.Context, arg UpsertContributionParams) error {
	_, err := q.db.ExecContext(ctx, upsertContribution,
		arg.SourceKey,
		arg.SpeechID,
		arg.RunID,
		arg.Position,
		arg.SpeakerName,
		arg.PersonID,
		arg.SpeechType,
		arg.Body,
		arg.ColumnNumber,
		arg.SpokenAt,
		arg.OralHeading,
		arg.MajorHeading,
		arg.MinorHeading,
		arg.HasOralQnum,
		arg.OralQnum,
	)
	return err
}

const getContributionsByRun = `
SELECT source_key, speech_id, run_id, position, speaker_name, person_id,
    speech_type, body, column_number, spoken_at, oral_heading,
    major_heading, minor_heading, has_oral_qnum, oral_qnum
FROM contributions WHERE run_id = ? ORDER BY position ASC
`

func (q *Queries) GetContributionsByRun(ctx context.Context, runId string) ([]Contribution, error) {
	rows, err := q.db.QueryContext(ctx, getContributionsByRun, runId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Contribution
	for rows.Next() {
		var i Contribution
		err := rows.Scan(
			&i.SourceKey,
			&i.SpeechID,
			&i.RunID,
			&i.Position,
			&i.SpeakerName,
			&i.PersonID,
			&i.SpeechType,
			&i.Body,
			&i.ColumnNumber,
			&i.SpokenAt,
			&i.OralHeading,
			&i.MajorHeading,
			&i.MinorHeading,
			&i.HasOralQnum,
			&i.OralQnum,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
