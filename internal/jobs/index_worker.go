package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/novanote/novanote/internal/domain"
	"github.com/panjf2000/ants/v2"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3

	// DefaultConcurrency bounds how many items are re-indexed at once
	DefaultConcurrency = 4
)

// IndexJobRepository defines the interface for index job persistence
type IndexJobRepository interface {
	// GetPendingJobs retrieves and claims pending index jobs
	GetPendingJobs(ctx context.Context) ([]*domain.IndexJob, error)

	// UpdateJobStatus updates the status of an index job
	UpdateJobStatus(ctx context.Context, jobID string, status domain.IndexJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// ItemIndexService indexes stored items
type ItemIndexService interface {
	IndexItem(ctx context.Context, itemID string) error
	MarkIndexFailed(ctx context.Context, itemID, reason string) error
}

// IndexWorker retries indexing of items whose synchronous indexing failed.
// Claimed jobs run concurrently on a bounded goroutine pool.
type IndexWorker struct {
	repo    IndexJobRepository
	service ItemIndexService
	pool    *ants.Pool
}

// NewIndexWorker creates a new IndexWorker instance. Call Close to release
// the pool.
func NewIndexWorker(repo IndexJobRepository, service ItemIndexService, concurrency int) (*IndexWorker, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	pool, err := ants.NewPool(concurrency, ants.WithPanicHandler(func(p interface{}) {
		log.Printf("Index job panic recovered: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &IndexWorker{
		repo:    repo,
		service: service,
		pool:    pool,
	}, nil
}

// ProcessJobs implements the JobProcessor interface. It returns once every
// claimed job has finished.
func (w *IndexWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending index jobs", len(jobs))

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		err := w.pool.Submit(func() {
			defer wg.Done()
			if err := w.processJob(ctx, job); err != nil {
				log.Printf("Error processing job %s: %v", job.ID, err)
			}
		})
		if err != nil {
			wg.Done()
			log.Printf("Job %s not scheduled: %v", job.ID, err)
			if uerr := w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusPending, err.Error()); uerr != nil {
				log.Printf("Error releasing job %s: %v", job.ID, uerr)
			}
		}
	}
	wg.Wait()

	return nil
}

// Close releases the worker pool.
func (w *IndexWorker) Close() {
	w.pool.Release()
}

func (w *IndexWorker) processJob(ctx context.Context, job *domain.IndexJob) error {
	log.Printf("Processing job %s for item %s", job.ID, job.ItemID)

	if err := w.service.IndexItem(ctx, job.ItemID); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *IndexWorker) handleJobFailure(ctx context.Context, job *domain.IndexJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		if err := w.service.MarkIndexFailed(ctx, job.ItemID, jobErr.Error()); err != nil {
			return fmt.Errorf("failed to mark item %s as failed: %w", job.ItemID, err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
