package jobs

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/repos"
)

type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *Registry
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *Registry) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		const maxAttempts = 3
		retryDelay := 1 * time.Minute
		staleRunning := 10 * time.Minute
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job, err := w.repo.ClaimNextRunnable(ctx, w.db, maxAttempts, retryDelay, staleRunning)
				if err != nil {
					w.log.Warn("ClaimNextRunnable failed", "error", err)
					continue
				}
				if job == nil {
					continue
				}
				jc := NewContext(ctx, w.db, job, w.repo, w.log)
				h, ok := w.registry.Get(job.JobType)
				if !ok {
					w.log.Warn("No handler registered for job_type", "job_type", job.JobType, "job_id", job.ID)
					_ = jc.Fail("dispatch", &missingHandlerError{JobType: job.JobType})
					continue
				}
				w.runOne(jc, h)
			}
		}
	}()
}

// runOne executes a single handler. A panic marks the row failed instead of
// taking down the worker loop.
func (w *Worker) runOne(jc *Context, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Job handler panic", "job_id", jc.Job.ID, "job_type", jc.Job.JobType, "panic", r)
			_ = jc.Fail("panic", fmt.Errorf("panic: %v", r))
		}
	}()
	started := time.Now()
	if err := h.Run(jc); err != nil {
		w.log.Error("Job failed", "job_id", jc.Job.ID, "job_type", jc.Job.JobType, "error", err)
		_ = jc.Fail("run", err)
		return
	}
	w.log.Info("Job finished", "job_id", jc.Job.ID, "job_type", jc.Job.JobType, "elapsed", time.Since(started).String())
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string {
	return "no handler registered for job_type=" + e.JobType
}
