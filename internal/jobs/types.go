// Package jobs defines the analysis job model and the queue/store
// abstractions around it. A job is one pipeline run over one or more
// uploaded statements, tracked by status; failed jobs are terminal and are
// not retried automatically.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/finlens/statement-analyzer/internal/analyze"
	"github.com/finlens/statement-analyzer/internal/domain"
	"github.com/finlens/statement-analyzer/internal/narrative"
)

// ErrJobNotFound is returned by stores when no job exists for an ID.
var ErrJobNotFound = errors.New("job not found")

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAnalyzeStatements is a statement analysis pipeline run.
	JobTypeAnalyzeStatements JobType = "analyze_statements"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing indicates the pipeline is running.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates the job completed and has a result.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed; Error holds the reason.
	JobStatusFailed JobStatus = "failed"
)

// FileInput is one uploaded statement handed to the pipeline. Data is
// in-process only and never persisted; a GCS URI may stand in for inline
// bytes until the worker fetches them.
type FileInput struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Password  string `json:"-"`
	GCSURI    string `json:"gcs_uri,omitempty"`
	Data      []byte `json:"-"`
}

// FileRecord is the per-file outcome recorded at the fan-out boundary. A
// failed file contributes zero transactions and an Error string; it does
// not fail the job.
type FileRecord struct {
	Name             string              `json:"name"`
	TransactionCount int                 `json:"transaction_count"`
	SkippedLines     int                 `json:"skipped_lines"`
	Bank             *domain.BankProfile `json:"bank,omitempty"`
	Error            string              `json:"error,omitempty"`
}

// Result is the persisted output of a completed job.
type Result struct {
	Report       *analyze.Report       `json:"report"`
	Narrative    *narrative.Result     `json:"narrative,omitempty"`
	Files        []FileRecord          `json:"files"`
	Transactions []*domain.Transaction `json:"transactions"`
}

// AnalyzeStatementsJob is one pipeline run over a set of statements.
type AnalyzeStatementsJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Owner identifies the caller the job belongs to.
	Owner string `json:"owner"`

	// Inputs are the uploaded statements. Bytes live only in process.
	Inputs []FileInput `json:"inputs"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the pipeline began processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job reached a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the failure reason for failed jobs.
	Error string `json:"error,omitempty"`

	// Result is set once the job completes.
	Result *Result `json:"result,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *AnalyzeStatementsJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *AnalyzeStatementsJob) GetType() JobType {
	return JobTypeAnalyzeStatements
}

// GetStatus implements the Job interface.
func (j *AnalyzeStatementsJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
// This abstraction allows for different queue implementations.
type Publisher interface {
	// PublishAnalyzeStatements publishes a statement analysis job.
	PublishAnalyzeStatements(ctx context.Context, job *AnalyzeStatementsJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. The handler owns terminal
// state transitions; a returned error only marks the queue-side outcome.
type JobHandler func(ctx context.Context, job Job) error

// Store defines the interface for storing and retrieving job state.
type Store interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *AnalyzeStatementsJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*AnalyzeStatementsJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalyzeStatementsJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Owner filters jobs by owner.
	Owner string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
