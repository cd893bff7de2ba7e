package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/types"
	"net/http"
	"time"
)

// BatchHandler exposes manual triggers for the nightly batch jobs. Triggers
// only enqueue a job_run row; the worker picks it up on its next tick.
type BatchHandler struct {
	jobRunRepo repos.JobRunRepo
}

func NewBatchHandler(jobRunRepo repos.JobRunRepo) *BatchHandler {
	return &BatchHandler{jobRunRepo: jobRunRepo}
}

func (bh *BatchHandler) TriggerScores(c *gin.Context) {
	bh.trigger(c, types.JobTypeScoreBatch)
}

func (bh *BatchHandler) TriggerPriorities(c *gin.Context) {
	bh.trigger(c, types.JobTypePriorityBatch)
}

func (bh *BatchHandler) TriggerQueueGenerate(c *gin.Context) {
	bh.trigger(c, types.JobTypeQueueGenerate)
}

func (bh *BatchHandler) trigger(c *gin.Context, jobType string) {
	now := time.Now().UTC()
	runDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	run := &types.JobRun{
		JobType: jobType,
		RunDate: runDate,
		Status:  types.JobStatusQueued,
	}
	created, err := bh.jobRunRepo.Enqueue(c.Request.Context(), nil, run)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job": created})
}

func (bh *BatchHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}
	job, err := bh.jobRunRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}
