package jobs

import (
	"context"
	"log"
	"time"

	"backend-pulsedash/internal/collector"
)

// Worker drains the collect queue, one job at a time.
type Worker struct {
	jobs *Service
	sync *collector.Sync
}

func NewWorker(jobs *Service, sync *collector.Sync) *Worker {
	return &Worker{jobs: jobs, sync: sync}
}

// Run blocks until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	for {
		id, err := w.jobs.dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("worker: dequeue: %v", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		if id == "" {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		w.Process(ctx, id)
	}
}

// Process runs one job to a terminal status.
func (w *Worker) Process(ctx context.Context, id string) {
	job, err := w.jobs.load(ctx, id)
	if err != nil {
		log.Printf("worker: job %s: %v", id, err)
		return
	}
	if err := w.jobs.markRunning(ctx, &job); err != nil {
		log.Printf("worker: job %s: %v", id, err)
		return
	}

	report, err := w.sync.Day(ctx, job.UserID, job.Day)
	if err != nil {
		w.jobs.fail(ctx, &job, err)
		return
	}
	if err := w.jobs.complete(ctx, &job, report); err != nil {
		log.Printf("worker: job %s: %v", id, err)
	}
}
