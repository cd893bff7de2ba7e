package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/services"
	"github.com/linkforge/linkforge-backend/internal/utils"
)

// NotifyBus publishes queue-generation summaries for out-of-process
// consumers (the email digest worker subscribes to this channel).
type NotifyBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

type queueSummaryMessage struct {
	Event     string                          `json:"event"`
	QueueDate string                          `json:"queue_date"`
	Result    *services.QueueGenerationResult `json:"result"`
	SentAt    time.Time                       `json:"sent_at"`
}

func NewNotifyBus(rdb *goredis.Client, log *logger.Logger) *NotifyBus {
	ch := strings.TrimSpace(utils.GetEnv("REDIS_NOTIFY_CHANNEL", "notifications", log))
	return &NotifyBus{
		log:     log.With("service", "RedisNotifyBus"),
		rdb:     rdb,
		channel: ch,
	}
}

func (b *NotifyBus) QueueGenerated(ctx context.Context, queueDate time.Time, result *services.QueueGenerationResult) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("notify bus not initialized")
	}
	raw, err := json.Marshal(queueSummaryMessage{
		Event:     "queue_generated",
		QueueDate: queueDate.Format("2006-01-02"),
		Result:    result,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal queue summary: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish queue summary: %w", err)
	}
	return nil
}
