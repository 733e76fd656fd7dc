package db

import (
	"context"
)

const upsertSection = `
INSERT INTO sections (
    sitting_date, source_key, start_index, end_index, located_at,
    preceding_heading, following_heading, total_rows, num_questions,
    num_speakers, question_numbers, sequence_complete, missing_numbers
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (sitting_date) DO UPDATE SET
    source_key = excluded.source_key,
    start_index = excluded.start_index,
    end_index = excluded.end_index,
    located_at = excluded.located_at,
    preceding_heading = excluded.preceding_heading,
    following_heading = excluded.following_heading,
    total_rows = excluded.total_rows,
    num_questions = excluded.num_questions,
    num_speakers = excluded.num_speakers,
    question_numbers = excluded.question_numbers,
    sequence_complete = excluded.sequence_complete,
    missing_numbers = excluded.missing_numbers
`

type UpsertSectionParams = Section

func (q *Queries) UpsertSection(ctx context.Context, arg UpsertSectionParams) error {
	_, err := q.db.ExecContext(ctx, upsertSection,
		arg.SittingDate,
		arg.SourceKey,
		arg.StartIndex,
		arg.EndIndex,
		arg.LocatedAt,
		arg.PrecedingHeading,
		arg.FollowingHeading,
		arg.TotalRows,
		arg.NumQuestions,
		arg.NumSpeakers,
		arg.QuestionNumbers,
		arg.SequenceComplete,
		arg.MissingNumbers,
	)
	return err
}

const getSection = `
SELECT sitting_date, source_key, start_index, end_index, located_at,
    preceding_heading, following_heading, total_rows, num_questions,
    num_speakers, question_numbers, sequence_complete, missing_numbers
FROM sections WHERE sitting_date = ?
`

func (q *Queries) GetSection(ctx context.Context, sittingDate string) (Section, error) {
	row := q.db.QueryRowContext(ctx, getSection, sittingDate)
	var i Section
	err := row.Scan(
		&i.SittingDate,
		&i.SourceKey,
		&i.StartIndex,
		&i.EndIndex,
		&i.LocatedAt,
		&i.PrecedingHeading,
		&i.FollowingHeading,
		&i.TotalRows,
		&i.NumQuestions,
		&i.NumSpeakers,
		&i.QuestionNumbers,
		&i.SequenceComplete,
		&i.MissingNumbers,
	)
	return i, err
}

const deleteSectionRows = `
DELETE FROM section_rows WHERE sitting_date = ?
`

func (q *Queries) DeleteSectionRows(ctx context.Context, sittingDate string) error {
	_, err := q.db.ExecContext(ctx, deleteSectionRows, sittingDate)
	return err
}

const createSectionRow = `
INSERT INTO section_rows (
    sitting_date, sequence, speech_id, speaker_name, speech_type,
    body, oral_qnum, starts_session, is_engagement_question, qa_group
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateSectionRowParams = SectionRow

func (q *Queries) CreateSectionRow(ctx context.Context, arg CreateSectionRowParams) error {
	_, err := q.db.ExecContext(ctx, createSectionRow,
		arg.SittingDate,
		arg.Sequence,
		arg.SpeechID,
		arg.SpeakerName,
		arg.SpeechType,
		arg.Body,
		arg.OralQnum,
		arg.StartsSession,
		arg.IsEngagementQuestion,
		arg.QaGroup,
	)
	return err
}

const getSectionRows = `
SELECT sitting_date, sequence, speech_id, speaker_name, speech_type,
    body, oral_qnum, starts_session, is_engagement_question, qa_group
FROM section_rows WHERE sitting_date = ? ORDER BY sequence ASC
`

func (q *Queries) GetSectionRows(ctx context.Context, sittingDate string) ([]SectionRow, error) {
	rows, err := q.db.QueryContext(ctx, getSectionRows, sittingDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SectionRow
	for rows.Next() {
		var i SectionRow
		err := rows.Scan(
			&i.SittingDate,
			&i.Sequence,
			&i.SpeechID,
			&i.SpeakerName,
			&i.SpeechType,
			&i.Body,
			&i.OralQnum,
			&i.StartsSession,
			&i.IsEngagementQuestion,
			&i.QaGroup,
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

const listSectionDates = `
SELECT sitting_date FROM sections ORDER BY sitting_date ASC
`

func (q *Queries) ListSectionDates(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listSectionDates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var sitting_date string
		if err := rows.Scan(&sitting_date); err != nil {
			return nil, err
		}
		items = append(items, sitting_date)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
