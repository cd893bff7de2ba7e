package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
	"time"
)

type StatusHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.StatusHistory) ([]*types.StatusHistory, error)
	GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.StatusHistory, error)
	LatestTransitionInto(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, toStatus string) (*types.StatusHistory, error)
	ListTransitionsIntoSince(ctx context.Context, tx *gorm.DB, toStatus string, since time.Time, limit int) ([]*types.StatusHistory, error)
}

type statusHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStatusHistoryRepo(db *gorm.DB, baseLog *logger.Logger) StatusHistoryRepo {
	return &statusHistoryRepo{db: db, log: baseLog.With("repo", "StatusHistoryRepo")}
}

func (r *statusHistoryRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.StatusHistory) ([]*types.StatusHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(records) == 0 {
		return []*types.StatusHistory{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *statusHistoryRepo) GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.StatusHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StatusHistory
	if contactID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *statusHistoryRepo) LatestTransitionInto(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, toStatus string) (*types.StatusHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if contactID == uuid.Nil {
		return nil, nil
	}
	var row types.StatusHistory
	err := transaction.WithContext(ctx).
		Where("contact_id = ? AND to_status = ?", contactID, toStatus).
		Order("created_at DESC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListTransitionsIntoSince feeds follow-up selection: contacts that entered a
// status recently. Bounded because a busy import day can move hundreds.
func (r *statusHistoryRepo) ListTransitionsIntoSince(ctx context.Context, tx *gorm.DB, toStatus string, since time.Time, limit int) ([]*types.StatusHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StatusHistory
	q := transaction.WithContext(ctx).
		Where("to_status = ? AND created_at >= ?", toStatus, since).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
