package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
	"time"
)

type QueueItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*types.QueueItem) ([]*types.QueueItem, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QueueItem, error)
	ListForDate(ctx context.Context, tx *gorm.DB, date time.Time) ([]*types.QueueItem, error)
	ListPendingBefore(ctx context.Context, tx *gorm.DB, date time.Time) ([]*types.QueueItem, error)
	ActiveContactIDsOn(ctx context.Context, tx *gorm.DB, date time.Time) (map[uuid.UUID]bool, error)
	ActiveContactIDsBefore(ctx context.Context, tx *gorm.DB, date time.Time) (map[uuid.UUID]bool, error)
	RescheduleToDate(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, date time.Time) error
	WeeklyConnectionRequestUsage(ctx context.Context, tx *gorm.DB, weekStart, weekEnd time.Time) (int64, error)
	CountByActionTypeOn(ctx context.Context, tx *gorm.DB, date time.Time, actionType string) (int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type queueItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQueueItemRepo(db *gorm.DB, baseLog *logger.Logger) QueueItemRepo {
	return &queueItemRepo{db: db, log: baseLog.With("repo", "QueueItemRepo")}
}

func (r *queueItemRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.QueueItem) ([]*types.QueueItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(items) == 0 {
		return []*types.QueueItem{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *queueItemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QueueItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var item types.QueueItem
	err := transaction.WithContext(ctx).
		Preload("Contact").
		Preload("Template").
		Where("id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *queueItemRepo) ListForDate(ctx context.Context, tx *gorm.DB, date time.Time) ([]*types.QueueItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QueueItem
	if err := transaction.WithContext(ctx).
		Preload("Contact").
		Where("queue_date = ?", dateOnly(date)).
		Order("action_type ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *queueItemRepo) ListPendingBefore(ctx context.Context, tx *gorm.DB, date time.Time) ([]*types.QueueItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QueueItem
	if err := transaction.WithContext(ctx).
		Where("status = ? AND queue_date < ?", types.QueueStatusPending, dateOnly(date)).
		Order("queue_date ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *queueItemRepo) ActiveContactIDsOn(ctx context.Context, tx *gorm.DB, date time.Time) (map[uuid.UUID]bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.QueueItem{}).
		Where("queue_date = ? AND status IN ?", dateOnly(date), types.ActiveQueueStatuses).
		Pluck("contact_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ActiveContactIDsBefore finds contacts still holding an unresolved item from
// an earlier day; those are never re-queued.
func (r *queueItemRepo) ActiveContactIDsBefore(ctx context.Context, tx *gorm.DB, date time.Time) (map[uuid.UUID]bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.QueueItem{}).
		Where("queue_date < ? AND status IN ?", dateOnly(date), types.ActiveQueueStatuses).
		Pluck("contact_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *queueItemRepo) RescheduleToDate(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, date time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.QueueItem{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"queue_date": dateOnly(date),
			"updated_at": time.Now(),
		}).Error
}

// WeeklyConnectionRequestUsage counts connection requests already spent for
// the week: executed ones by execution time, plus still-active ones by their
// queue date. weekEnd is exclusive.
func (r *queueItemRepo) WeeklyConnectionRequestUsage(ctx context.Context, tx *gorm.DB, weekStart, weekEnd time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var executed int64
	if err := transaction.WithContext(ctx).
		Model(&types.QueueItem{}).
		Where("action_type = ? AND status = ? AND executed_at >= ? AND executed_at < ?",
			types.QueueActionConnectionRequest, types.QueueStatusExecuted, weekStart, weekEnd).
		Count(&executed).Error; err != nil {
		return 0, err
	}
	var active int64
	if err := transaction.WithContext(ctx).
		Model(&types.QueueItem{}).
		Where("action_type = ? AND status IN ? AND queue_date >= ? AND queue_date < ?",
			types.QueueActionConnectionRequest, types.ActiveQueueStatuses, dateOnly(weekStart), dateOnly(weekEnd)).
		Count(&active).Error; err != nil {
		return 0, err
	}
	return executed + active, nil
}

// CountByActionTypeOn counts every non-skipped item of the action type on
// the date; queue generation uses it to keep re-runs within the day budget.
func (r *queueItemRepo) CountByActionTypeOn(ctx context.Context, tx *gorm.DB, date time.Time, actionType string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.QueueItem{}).
		Where("queue_date = ? AND action_type = ? AND status <> ?", dateOnly(date), actionType, types.QueueStatusSkipped).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *queueItemRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.QueueItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// dateOnly truncates to midnight UTC so comparisons against date-typed
// columns are unambiguous regardless of the caller's clock.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
