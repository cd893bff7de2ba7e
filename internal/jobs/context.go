package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/types"
)

// Context is the execution handle for a single claimed job run. Handlers
// never touch the job_run row directly; they terminate through Succeed or
// Fail so the lifecycle transitions stay in one place.
type Context struct {
	Ctx     context.Context
	DB      *gorm.DB
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	Log     *logger.Logger
	payload map[string]any
}

func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo repos.JobRunRepo, log *logger.Logger) *Context {
	c := &Context{
		Ctx:  ctx,
		DB:   db,
		Job:  job,
		Repo: repo,
		Log:  log,
	}
	c.decodePayload()
	return c
}

func (c *Context) decodePayload() {
	c.payload = map[string]any{}
	if c.Job == nil || len(c.Job.Payload) == 0 {
		return
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		return
	}
	c.payload = m
}

// Payload returns the decoded payload map. Never nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

func (c *Context) Heartbeat() {
	if c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	if err := c.Repo.Heartbeat(c.Ctx, nil, c.Job.ID); err != nil && c.Log != nil {
		c.Log.Warn("Job heartbeat failed", "job_id", c.Job.ID, "error", err)
	}
}

// Succeed marks the job succeeded and stores the handler's result as JSON.
func (c *Context) Succeed(result any) error {
	if c.Job == nil || c.Job.ID == uuid.Nil {
		return nil
	}
	updates := map[string]interface{}{
		"status": types.JobStatusSucceeded,
		"error":  "",
	}
	if result != nil {
		raw, err := json.Marshal(result)
		if err == nil {
			updates["result"] = datatypes.JSON(raw)
		} else if c.Log != nil {
			c.Log.Warn("Job result marshal failed", "job_id", c.Job.ID, "error", err)
		}
	}
	return c.Repo.UpdateFields(c.Ctx, nil, c.Job.ID, updates)
}

// Fail records a failed attempt. The claim query decides whether the row is
// retried based on attempts and last_error_at.
func (c *Context) Fail(stage string, runErr error) error {
	if c.Job == nil || c.Job.ID == uuid.Nil {
		return nil
	}
	msg := stage
	if runErr != nil {
		msg = stage + ": " + runErr.Error()
	}
	now := time.Now()
	return c.Repo.UpdateFields(c.Ctx, nil, c.Job.ID, map[string]interface{}{
		"status":        types.JobStatusFailed,
		"error":         msg,
		"last_error_at": now,
	})
}
