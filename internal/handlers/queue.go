package handlers

import (
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/services"
	"net/http"
	"time"
)

type QueueHandler struct {
	queueService services.QueueService
}

func NewQueueHandler(queueService services.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

// List returns the queue for a given day, defaulting to today.
func (qh *QueueHandler) List(c *gin.Context) {
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}
	items, err := qh.queueService.ListForDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Generate builds the queue on demand. The nightly batch normally does this;
// generation for a day that already has a queue only tops up the shortfall.
func (qh *QueueHandler) Generate(c *gin.Context) {
	var req struct {
		Date           string `json:"date"`
		MaxNewRequests int    `json:"max_new_requests"`
		WeeklyLimit    int    `json:"weekly_limit"`
	}
	// Body is optional; an empty or absent body means "today with defaults".
	_ = c.ShouldBindJSON(&req)
	opts := services.QueueOptions{
		QueueDate:      time.Now().UTC(),
		MaxNewRequests: req.MaxNewRequests,
		WeeklyLimit:    req.WeeklyLimit,
	}
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		opts.QueueDate = parsed
	}
	result, err := qh.queueService.GenerateDailyQueue(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (qh *QueueHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid queue item id"})
		return
	}
	item, err := qh.queueService.ApproveItem(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "queue item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (qh *QueueHandler) Skip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid queue item id"})
		return
	}
	item, err := qh.queueService.SkipItem(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "queue item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (qh *QueueHandler) Snooze(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid queue item id"})
		return
	}
	var req struct {
		Until string `json:"until"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	until, err := time.Parse("2006-01-02", req.Until)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "until must be YYYY-MM-DD"})
		return
	}
	item, err := qh.queueService.SnoozeItem(c.Request.Context(), id, until)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "queue item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// Execute marks an item done and records the resulting interaction. A rate
// limit rejection comes back as 429 so the client can retry later.
func (qh *QueueHandler) Execute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid queue item id"})
		return
	}
	item, err := qh.queueService.ExecuteItem(c.Request.Context(), id, time.Now().UTC())
	if errors.Is(err, services.ErrRateLimited) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "queue item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}
