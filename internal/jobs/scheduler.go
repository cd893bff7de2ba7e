package jobs

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/types"
	"github.com/linkforge/linkforge-backend/internal/utils"
)

// scheduledTypes run once per day, in this order. Scores feed status
// transitions, priorities feed target selection, then the queue is built.
var scheduledTypes = []string{
	types.JobTypeScoreBatch,
	types.JobTypePriorityBatch,
	types.JobTypeQueueGenerate,
}

type Scheduler struct {
	db      *gorm.DB
	log     *logger.Logger
	repo    repos.JobRunRepo
	runHour int
}

func NewScheduler(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo) *Scheduler {
	return &Scheduler{
		db:      db,
		log:     baseLog.With("component", "JobScheduler"),
		repo:    repo,
		runHour: utils.GetEnvAsInt("BATCH_RUN_HOUR_UTC", 6, baseLog),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		s.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// tick enqueues today's batch rows once the run hour has passed. The
// (job_type, run_date) dedup makes re-ticks and restarts harmless.
func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()
	if now.Hour() < s.runHour {
		return
	}
	runDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, jobType := range scheduledTypes {
		exists, err := s.repo.ExistsForTypeAndDate(ctx, nil, jobType, runDate)
		if err != nil {
			s.log.Warn("Scheduler dedup check failed", "job_type", jobType, "error", err)
			continue
		}
		if exists {
			continue
		}
		run := &types.JobRun{
			JobType: jobType,
			RunDate: runDate,
			Status:  types.JobStatusQueued,
		}
		if _, err := s.repo.Enqueue(ctx, nil, run); err != nil {
			s.log.Warn("Scheduler enqueue failed", "job_type", jobType, "error", err)
			continue
		}
		s.log.Info("Scheduled batch job", "job_type", jobType, "run_date", runDate.Format("2006-01-02"))
	}
}
