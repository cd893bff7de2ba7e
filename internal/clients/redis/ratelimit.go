package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/linkforge/linkforge-backend/internal/logger"
)

// ActionLimiter is the live per-action counter behind "can I act now"
// checks. Acquire must be atomic: two concurrent executors racing a
// check-then-act would otherwise double-spend the cap.
type ActionLimiter struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewActionLimiter(rdb *goredis.Client, baseLog *logger.Logger) *ActionLimiter {
	return &ActionLimiter{
		log: baseLog.With("service", "ActionLimiter"),
		rdb: rdb,
	}
}

// TryAcquire increments the window counter and releases the unit again if
// the increment pushed past the limit. INCR + EXPIRE NX run in one
// transaction, so the key always carries its expiry.
func (l *ActionLimiter) TryAcquire(ctx context.Context, action string, limit int64, window time.Duration) (bool, error) {
	if l == nil || l.rdb == nil {
		return false, fmt.Errorf("action limiter not initialized")
	}
	key := counterKey(action, window)

	var incr *goredis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit acquire: %w", err)
	}
	if incr.Val() > limit {
		if derr := l.rdb.Decr(ctx, key).Err(); derr != nil {
			l.log.Warn("Failed to release over-limit unit", "key", key, "error", derr)
		}
		return false, nil
	}
	return true, nil
}

// Remaining reports how many units are left in the current window.
func (l *ActionLimiter) Remaining(ctx context.Context, action string, limit int64, window time.Duration) (int64, error) {
	if l == nil || l.rdb == nil {
		return 0, fmt.Errorf("action limiter not initialized")
	}
	used, err := l.rdb.Get(ctx, counterKey(action, window)).Int64()
	if err == goredis.Nil {
		used = 0
	} else if err != nil {
		return 0, fmt.Errorf("rate limit read: %w", err)
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// counterKey buckets by calendar day or ISO week so windows reset on
// boundaries the operator can predict.
func counterKey(action string, window time.Duration) string {
	now := time.Now().UTC()
	if window > 24*time.Hour {
		year, week := now.ISOWeek()
		return fmt.Sprintf("ratelimit:%s:week:%d-%02d", action, year, week)
	}
	return fmt.Sprintf("ratelimit:%s:day:%s", action, now.Format("2006-01-02"))
}
