package twfy

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pmqwatch/lib/timezone"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DebateSource is the fetch primitive the orchestrator runs against.
// *Client satisfies it, tests substitute an in-memory table of editions.
type DebateSource interface {
	FetchDebate(ctx context.Context, cand Candidate) (ContributionTable, error)
}

type FetchOptions struct {
	// bound on in-flight fetches, defaults to 4. keep this low, the
	// rate gate inside the client only spaces out request starts
	Concurrency int
	// when set, every non-empty edition is written here as
	// <key>.csv before aggregation so an aborted run keeps what it
	// already fetched
	OutputDir string
}

// EditionResult is the outcome for one candidate. Exactly one of the
// Table/Absent/Err fields is meaningful: a table (possibly empty for a
// superseded revision), a confirmed absence, or a failure that was
// logged and skipped.
type EditionResult struct {
	Candidate Candidate
	Table     ContributionTable
	Absent    bool
	Err       error
}

// Batch holds every candidate's outcome in candidate order, not
// completion order.
type Batch struct {
	RunID       string
	ProcessedAt time.Time
	Results     []EditionResult
}

// FetchAll resolves every candidate under a bounded worker pool. One
// edition failing or missing never disturbs its siblings, the batch
// always runs to completion.
func FetchAll(ctx context.Context, src DebateSource, candidates []Candidate, opts FetchOptions) (Batch, error) {
	ctx, span := tracer.Start(ctx, "FetchAll")
	defer span.End()

	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	runId, err := random.String(8)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Batch{}, err
	}

	if opts.OutputDir != "" {
		err := os.MkdirAll(opts.OutputDir, 0777)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Batch{}, err
		}
	}

	// results are written by original index so the merge keeps
	// candidate order no matter which fetches finish first
	results := make([]EditionResult, len(candidates))
	sem := make(chan struct{}, opts.Concurrency)
	wg := sync.WaitGroup{}

	for i, cand := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = fetchOne(ctx, src, cand, opts.OutputDir)
		}()
	}
	wg.Wait()

	batch := Batch{
		RunID:       runId,
		ProcessedAt: timezone.Now(),
		Results:     results,
	}

	fetched, absent, failed := batch.Counts()
	slog.InfoContext(ctx, "fetch batch complete",
		"run_id", runId,
		"fetched", fetched,
		"absent", absent,
		"failed", failed,
	)
	return batch, nil
}

func fetchOne(ctx context.Context, src DebateSource, cand Candidate, outputDir string) EditionResult {
	res := EditionResult{Candidate: cand}

	table, err := src.FetchDebate(ctx, cand)
	if errors.Is(err, ErrDebateNotFound) {
		// expected, the enumerator over-generates sub-edition letters
		res.Absent = true
		return res
	}
	if err != nil {
		slog.WarnContext(ctx, "skipping edition",
			"key", cand.Key(),
			"err", err,
		)
		res.Err = err
		return res
	}

	res.Table = table
	if outputDir != "" && len(table) > 0 {
		path := filepath.Join(outputDir, cand.Key()+".csv")
		err := WriteContributionsCSV(path, table)
		if err != nil {
			slog.ErrorContext(ctx, "failed to persist edition",
				"key", cand.Key(),
				"path", path,
				"err", err,
			)
		}
	}
	return res
}

// Counts tallies the batch into editions that produced rows, editions
// that do not exist, and editions that failed.
func (b Batch) Counts() (fetched, absent, failed int) {
	for _, r := range b.Results {
		switch {
		case r.Err != nil:
			failed++
		case r.Absent:
			absent++
		case len(r.Table) > 0:
			fetched++
		default:
			// a superseded revision counts as absent, it carries no rows
			absent++
		}
	}
	return fetched, absent, failed
}

// Combined concatenates every non-empty table in candidate order,
// stamping each row with the edition it came from and the batch
// timestamp. Absent and failed candidates simply drop out.
func (b Batch) Combined() []SourcedContribution {
	var out []SourcedContribution
	for _, r := range b.Results {
		for _, rec := range r.Table {
			out = append(out, SourcedContribution{
				Contribution: rec,
				SourceKey:    r.Candidate.Key(),
				ProcessedAt:  b.ProcessedAt,
			})
		}
	}
	return out
}

// DateRange reports the first and last candidate dates in the batch,
// false when the batch is empty.
func (b Batch) DateRange() (time.Time, time.Time, bool) {
	if len(b.Results) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return b.Results[0].Candidate.Date, b.Results[len(b.Results)-1].Candidate.Date, true
}
