package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultPollInterval is used when a Worker is created without an interval.
const DefaultPollInterval = 10 * time.Second

// JobProcessor claims and runs one batch of queued jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker polls a JobProcessor until stopped. The first batch runs as soon as
// the worker starts, so jobs queued before a restart are not held back for a
// full interval.
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker creates a Worker. name prefixes its log lines.
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the polling loop until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.doneChan)

	log.Printf("%s worker: polling every %v", w.name, w.pollInterval)
	w.poll(ctx)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("%s worker: context cancelled", w.name)
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Worker) poll(ctx context.Context) {
	if err := w.processor.ProcessJobs(ctx); err != nil && ctx.Err() == nil {
		log.Printf("%s worker: %v", w.name, err)
	}
}

// Stop ends the loop, waits for the batch in flight, then closes the
// processor if it holds resources. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		<-w.doneChan
		if c, ok := w.processor.(interface{ Close() }); ok {
			c.Close()
		}
		log.Printf("%s worker: stopped", w.name)
	})
}
