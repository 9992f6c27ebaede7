// Package pipeline orchestrates one analysis job end to end: fetch, read,
// identify, normalize, categorize, analyze, narrate. Files are processed
// concurrently and failures are isolated per file; the job fails only when
// no file yields a single transaction.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/finlens/statement-analyzer/internal/analyze"
	"github.com/finlens/statement-analyzer/internal/bankid"
	"github.com/finlens/statement-analyzer/internal/categorize"
	"github.com/finlens/statement-analyzer/internal/domain"
	"github.com/finlens/statement-analyzer/internal/gcsfetch"
	"github.com/finlens/statement-analyzer/internal/jobs"
	"github.com/finlens/statement-analyzer/internal/logger"
	"github.com/finlens/statement-analyzer/internal/narrative"
	"github.com/finlens/statement-analyzer/internal/normalize"
	"github.com/finlens/statement-analyzer/internal/reader"
)

// ErrNoTransactions is the terminal failure for a job where every file
// either failed or produced an empty statement.
var ErrNoTransactions = errors.New("no transactions extracted from any file")

// narrativeTimeout bounds the external summarizer call. The structured
// report is already complete when it fires.
const narrativeTimeout = 30 * time.Second

// Sink receives a completed job's transactions for long-term storage.
// Sink errors are logged and ignored.
type Sink interface {
	InsertTransactions(ctx context.Context, jobID, bankCode string, txs []*domain.Transaction) error
}

// Pipeline runs analysis jobs.
type Pipeline struct {
	categorizer *categorize.Engine
	summarizer  narrative.Summarizer
	fetcher     gcsfetch.Fetcher
	sink        Sink
	store       jobs.Store
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithSummarizer sets the narrative summarizer. Absent, enrichment fields
// stay empty.
func WithSummarizer(s narrative.Summarizer) Option {
	return func(p *Pipeline) { p.summarizer = s }
}

// WithFetcher enables gs:// inputs.
func WithFetcher(f gcsfetch.Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithSink streams completed transactions to a warehouse.
func WithSink(s Sink) Option {
	return func(p *Pipeline) { p.sink = s }
}

// WithCategorizer replaces the default rule set.
func WithCategorizer(e *categorize.Engine) Option {
	return func(p *Pipeline) { p.categorizer = e }
}

// New creates a pipeline persisting job state to the given store.
func New(store jobs.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		categorizer: categorize.NewDefaultEngine(),
		store:       store,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// fileOutcome is one file's contribution after the fan-out barrier.
type fileOutcome struct {
	index  int
	record jobs.FileRecord
	txs    []*domain.Transaction
}

// Handle adapts Run to the queue's jobs.JobHandler signature.
func (p *Pipeline) Handle(ctx context.Context, job jobs.Job) error {
	aj, ok := job.(*jobs.AnalyzeStatementsJob)
	if !ok {
		return fmt.Errorf("Handle: unexpected job type %s", job.GetType())
	}
	return p.Run(ctx, aj)
}

// Run processes a job to a terminal state. The returned error mirrors the
// job's failure; the job struct itself always ends completed or failed.
func (p *Pipeline) Run(ctx context.Context, job *jobs.AnalyzeStatementsJob) (err error) {
	log := logger.FromContext(ctx).With().Str("job_id", job.JobID).Logger()
	ctx = logger.WithContext(ctx, log)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Run: panic: %v", r)
		}
		if err != nil {
			p.fail(ctx, job, err)
		}
	}()

	log.Info().Int("files", len(job.Inputs)).Msg("starting analysis job")

	outcomes := p.processFiles(ctx, job)

	var (
		all     []*domain.Transaction
		records = make([]jobs.FileRecord, len(outcomes))
	)
	for _, out := range outcomes {
		records[out.index] = out.record
		all = append(all, out.txs...)
	}

	if len(all) == 0 {
		job.Result = &jobs.Result{Files: records}
		return fmt.Errorf("Run: %w", ErrNoTransactions)
	}

	domain.SortByDate(all)
	p.categorizer.Apply(all)

	report := analyze.Run(ctx, all)

	result := &jobs.Result{
		Report:       report,
		Files:        records,
		Transactions: all,
	}
	result.Narrative = p.narrate(ctx, report)

	p.flushToSink(ctx, job.JobID, records, all)

	now := time.Now()
	job.Result = result
	job.Status = jobs.JobStatusCompleted
	job.CompletedAt = &now
	job.Error = ""

	if p.store != nil {
		if err := p.store.SaveJob(ctx, job); err != nil {
			log.Error().Err(err).Msg("saving completed job")
		}
	}

	log.Info().
		Int("transactions", len(all)).
		Int("files", len(records)).
		Msg("analysis job completed")
	return nil
}

// processFiles runs the per-file stage concurrently and waits for all
// files. Each file's failure is recorded on its own FileRecord.
func (p *Pipeline) processFiles(ctx context.Context, job *jobs.AnalyzeStatementsJob) []fileOutcome {
	outcomes := make([]fileOutcome, len(job.Inputs))
	var wg sync.WaitGroup

	for i, input := range job.Inputs {
		wg.Add(1)
		go func(i int, input jobs.FileInput) {
			defer wg.Done()
			outcomes[i] = p.processFile(ctx, i, input)
		}(i, input)
	}

	wg.Wait()
	return outcomes
}

// processFile handles one file: fetch, read, identify, normalize. Panics
// are contained here so one malformed file cannot take down its siblings.
func (p *Pipeline) processFile(ctx context.Context, index int, input jobs.FileInput) (out fileOutcome) {
	log := logger.FromContext(ctx).With().Str("file", input.Name).Logger()

	out = fileOutcome{index: index, record: jobs.FileRecord{Name: input.Name}}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("file processing panicked")
			out.record.Error = fmt.Sprintf("internal error: %v", r)
			out.txs = nil
		}
	}()

	data := input.Data
	if len(data) == 0 && input.GCSURI != "" {
		if p.fetcher == nil {
			out.record.Error = "remote input provided but no fetcher configured"
			return out
		}
		fetched, err := p.fetcher.Fetch(ctx, input.GCSURI)
		if err != nil {
			log.Error().Err(err).Str("uri", input.GCSURI).Msg("fetching remote statement")
			out.record.Error = fmt.Sprintf("fetch failed: %v", err)
			return out
		}
		data = fetched
		if input.Name == "" {
			input.Name = p.fetcher.FilenameFromURI(input.GCSURI)
			out.record.Name = input.Name
		}
	}

	content, err := reader.Read(ctx, &reader.RawDocument{
		Name:      input.Name,
		MediaType: input.MediaType,
		Password:  input.Password,
		Data:      data,
	})
	if err != nil {
		out.record.Error = readFailureReason(err)
		log.Warn().Err(err).Msg("reading statement failed")
		return out
	}

	profile := bankid.Identify(content.Text, input.Name)
	out.record.Bank = profile

	res := normalize.Extract(content, input.Name)
	for _, tx := range res.Transactions {
		if tx.Account == "" {
			tx.Account = profile.AccountNumber
		}
	}

	out.record.TransactionCount = len(res.Transactions)
	out.record.SkippedLines = res.Skipped
	out.txs = res.Transactions

	log.Debug().
		Str("bank", profile.BankCode).
		Int("transactions", len(res.Transactions)).
		Int("skipped", res.Skipped).
		Msg("file processed")
	return out
}

// narrate calls the external summarizer under a timeout. Any failure just
// leaves the deterministic projection in place.
func (p *Pipeline) narrate(ctx context.Context, report *analyze.Report) *narrative.Result {
	log := logger.FromContext(ctx)

	fallback := &narrative.Result{Projection: narrative.Project(report.MonthlyTrend)}
	if p.summarizer == nil {
		return fallback
	}

	nctx, cancel := context.WithTimeout(ctx, narrativeTimeout)
	defer cancel()

	snap := &narrative.Snapshot{
		Summary:        report.Summary,
		MonthlyTrend:   report.MonthlyTrend,
		RedAlerts:      report.RedAlerts,
		Counterparties: report.Counterparties,
		Risk:           report.Risk,
	}

	res, err := p.summarizer.Summarize(nctx, snap)
	if err != nil {
		log.Warn().Err(err).Msg("narrative summarizer failed, keeping structured report only")
		return fallback
	}
	if res.Projection == nil {
		res.Projection = fallback.Projection
	}
	return res
}

// flushToSink streams the job's transactions to the warehouse when one is
// configured. Warehouse trouble never affects the job outcome.
func (p *Pipeline) flushToSink(ctx context.Context, jobID string, records []jobs.FileRecord, txs []*domain.Transaction) {
	if p.sink == nil {
		return
	}

	bankCode := ""
	for _, rec := range records {
		if rec.Bank != nil && rec.Bank.BankCode != "" {
			bankCode = rec.Bank.BankCode
			break
		}
	}

	if err := p.sink.InsertTransactions(ctx, jobID, bankCode, txs); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("warehouse insert failed")
	}
}

// fail drives the job to the failed terminal state.
func (p *Pipeline) fail(ctx context.Context, job *jobs.AnalyzeStatementsJob, cause error) {
	log := logger.FromContext(ctx)

	now := time.Now()
	job.Status = jobs.JobStatusFailed
	job.Error = cause.Error()
	job.CompletedAt = &now

	if p.store != nil {
		if err := p.store.SaveJob(ctx, job); err != nil {
			log.Error().Err(err).Msg("saving failed job")
		}
	}

	log.Error().Err(cause).Str("job_id", job.JobID).Msg("analysis job failed")
}

// readFailureReason maps reader sentinels to the stable per-file reasons
// surfaced in job results.
func readFailureReason(err error) string {
	switch {
	case errors.Is(err, reader.ErrDecryptionFailed):
		return "decryption failed"
	case errors.Is(err, reader.ErrUnsupportedFormat):
		return "unsupported format"
	case errors.Is(err, reader.ErrCorruptDocument):
		return "corrupt document"
	default:
		return err.Error()
	}
}
