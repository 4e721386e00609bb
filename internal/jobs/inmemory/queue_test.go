package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rbarros/finassist/internal/jobs"
)

func waitForStatus(t *testing.T, st jobs.JobStore, jobID string, want jobs.JobStatus) *jobs.ScanDocumentJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := st.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, err := st.GetJob(context.Background(), jobID)
	t.Fatalf("job %s never reached status %q (last: %+v, err: %v)", jobID, want, job, err)
	return nil
}

func TestQueueProcessesJob(t *testing.T) {
	st := NewStore()
	q := NewQueue(10, st)
	defer q.Close()

	var mu sync.Mutex
	var seen []string
	err := q.Start(context.Background(), func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		seen = append(seen, job.GetID())
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	job := &jobs.ScanDocumentJob{UserID: "ana", GCSURI: "gs://docs/extrato.txt"}
	if err := q.PublishScanDocument(context.Background(), job); err != nil {
		t.Fatalf("PublishScanDocument() error: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("PublishScanDocument() did not assign a job ID")
	}
	if job.MaxRetries != defaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", job.MaxRetries, defaultMaxRetries)
	}

	done := waitForStatus(t, st, job.JobID, jobs.JobStatusCompleted)
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Errorf("completed job missing timestamps: %+v", done)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != job.JobID {
		t.Errorf("handler saw %v, want exactly [%s]", seen, job.JobID)
	}
}

func TestQueueRetriesUntilFailed(t *testing.T) {
	st := NewStore()
	q := NewQueue(10, st)
	defer q.Close()

	var mu sync.Mutex
	attempts := 0
	err := q.Start(context.Background(), func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("bucket unreachable")
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	job := &jobs.ScanDocumentJob{UserID: "ana", GCSURI: "gs://docs/extrato.txt", MaxRetries: 1}
	if err := q.PublishScanDocument(context.Background(), job); err != nil {
		t.Fatalf("PublishScanDocument() error: %v", err)
	}

	failed := waitForStatus(t, st, job.JobID, jobs.JobStatusFailed)
	if failed.Error == "" {
		t.Error("failed job has empty Error")
	}
	if failed.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", failed.RetryCount)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("handler ran %d times, want 2 (initial + retry)", attempts)
	}
}

func TestQueueRejectsAfterClose(t *testing.T) {
	q := NewQueue(1, nil)
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	job := &jobs.ScanDocumentJob{UserID: "ana", GCSURI: "gs://docs/extrato.txt"}
	if err := q.PublishScanDocument(context.Background(), job); err == nil {
		t.Error("PublishScanDocument() after Close returned nil error")
	}
}

func TestStoreListJobs(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, j := range []*jobs.ScanDocumentJob{
		{JobID: "a", UserID: "ana", Status: jobs.JobStatusCompleted},
		{JobID: "b", UserID: "ana", Status: jobs.JobStatusPending},
		{JobID: "c", UserID: "bruno", Status: jobs.JobStatusPending},
	} {
		j.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := st.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob(%s) error: %v", j.JobID, err)
		}
	}

	got, err := st.ListJobs(ctx, jobs.JobFilter{UserID: "ana"})
	if err != nil {
		t.Fatalf("ListJobs() error: %v", err)
	}
	if len(got) != 2 || got[0].JobID != "b" || got[1].JobID != "a" {
		ids := make([]string, len(got))
		for i, j := range got {
			ids[i] = j.JobID
		}
		t.Errorf("ListJobs(ana) = %v, want [b a] newest first", ids)
	}

	pending, err := st.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusPending, Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs() error: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("ListJobs(pending, limit 1) returned %d jobs, want 1", len(pending))
	}

	if _, err := st.GetJob(ctx, "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("GetJob(missing) error = %v, want ErrJobNotFound", err)
	}
}
