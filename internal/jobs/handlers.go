package jobs

import (
	"fmt"
	"time"

	"github.com/linkforge/linkforge-backend/internal/services"
	"github.com/linkforge/linkforge-backend/internal/types"
)

type ScoreBatchHandler struct {
	Scoring services.ScoringService
}

func (h *ScoreBatchHandler) Type() string { return types.JobTypeScoreBatch }

func (h *ScoreBatchHandler) Run(jc *Context) error {
	jc.Heartbeat()
	result, err := h.Scoring.ProcessAllContactScores(jc.Ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	return jc.Succeed(result)
}

type PriorityBatchHandler struct {
	Priority services.PriorityService
}

func (h *PriorityBatchHandler) Type() string { return types.JobTypePriorityBatch }

func (h *PriorityBatchHandler) Run(jc *Context) error {
	jc.Heartbeat()
	result, err := h.Priority.ProcessAllTargets(jc.Ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	return jc.Succeed(result)
}

type QueueGenerateHandler struct {
	Queue services.QueueService
}

func (h *QueueGenerateHandler) Type() string { return types.JobTypeQueueGenerate }

// Run builds the queue for the job's run date. Payload may override the
// daily and weekly limits, otherwise the service defaults apply.
func (h *QueueGenerateHandler) Run(jc *Context) error {
	jc.Heartbeat()
	if jc.Job == nil {
		return fmt.Errorf("nil job row")
	}
	opts := services.QueueOptions{QueueDate: jc.Job.RunDate}
	payload := jc.Payload()
	if v, ok := payload["max_new_requests"].(float64); ok && v > 0 {
		opts.MaxNewRequests = int(v)
	}
	if v, ok := payload["weekly_limit"].(float64); ok && v > 0 {
		opts.WeeklyLimit = int(v)
	}
	result, err := h.Queue.GenerateDailyQueue(jc.Ctx, opts)
	if err != nil {
		return err
	}
	return jc.Succeed(result)
}
