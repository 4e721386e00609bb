// Package jobs defines the asynchronous job model for document scanning.
// Queue implementations live in subpackages; the in-memory queue is
// suitable for single-instance deployments, and the interfaces leave room
// for Cloud Tasks or Pub/Sub later.
package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned when a job ID does not exist in the store.
var ErrJobNotFound = errors.New("job not found")

// JobType identifies the kind of work a job carries.
type JobType string

const (
	// JobTypeScanDocument extracts transactions from a stored document.
	JobTypeScanDocument JobType = "scan_document"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ScanDocumentJob asks a worker to fetch a document's text from object
// storage, run extraction over it and persist the resulting records for
// the owning user.
type ScanDocumentJob struct {
	JobID string `json:"job_id"`

	// UserID owns the document and receives the extracted records.
	UserID string `json:"user_id"`

	// GCSURI locates the document text, in gs://bucket/object form.
	GCSURI string `json:"gcs_uri"`

	Status JobStatus `json:"status"`

	// RecordCount is how many records the scan produced. Set on completion.
	RecordCount int `json:"record_count,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the failure reason when Status is failed or retrying.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is the generic view queue consumers receive.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ScanDocumentJob) GetID() string { return j.JobID }

func (j *ScanDocumentJob) GetType() JobType { return JobTypeScanDocument }

func (j *ScanDocumentJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs for asynchronous processing.
type Publisher interface {
	// PublishScanDocument enqueues a document scan. Missing JobID, Status,
	// CreatedAt and MaxRetries are filled in by the implementation.
	PublishScanDocument(ctx context.Context, job *ScanDocumentJob) error

	Close() error
}

// Consumer pulls jobs off a queue and hands them to a handler.
type Consumer interface {
	// Start launches the worker pool. The handler is invoked once per job;
	// a returned error marks the job failed and triggers a retry while
	// attempts remain.
	Start(ctx context.Context, handler JobHandler) error

	// Stop drains the workers, waiting for in-flight jobs to finish.
	Stop(ctx context.Context) error
}

// JobHandler processes a single job.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so callers can poll scan progress.
type JobStore interface {
	SaveJob(ctx context.Context, job *ScanDocumentJob) error
	GetJob(ctx context.Context, jobID string) (*ScanDocumentJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ScanDocumentJob, error)
}

// JobFilter selects jobs in ListJobs. Zero fields match everything.
type JobFilter struct {
	UserID string
	Status JobStatus
	Limit  int
}
