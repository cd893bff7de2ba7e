package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
	"time"
)

type ScoreHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, snapshots []*types.ScoreHistory) ([]*types.ScoreHistory, error)
	ListSince(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, scoreType string, since time.Time) ([]*types.ScoreHistory, error)
	MaxValueSince(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, scoreType string, since time.Time) (float64, bool, error)
	OldestSince(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, scoreType string, since time.Time) (*types.ScoreHistory, error)
}

type scoreHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoreHistoryRepo(db *gorm.DB, baseLog *logger.Logger) ScoreHistoryRepo {
	return &scoreHistoryRepo{db: db, log: baseLog.With("repo", "ScoreHistoryRepo")}
}

func (r *scoreHistoryRepo) Create(ctx context.Context, tx *gorm.DB, snapshots []*types.ScoreHistory) ([]*types.ScoreHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(snapshots) == 0 {
		return []*types.ScoreHistory{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *scoreHistoryRepo) ListSince(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, scoreType string, since time.Time) ([]*types.ScoreHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ScoreHistory
	if contactID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("contact_id = ? AND score_type = ? AND recorded_at >= ?", contactID, scoreType, since).
		Order("recorded_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MaxValueSince reports the highest snapshot in the window. The second return
// is false when the window holds no rows at all, which demotion treats
// differently from a low maximum.
func (r *scoreHistoryRepo) MaxValueSince(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, scoreType string, since time.Time) (float64, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if contactID == uuid.Nil {
		return 0, false, nil
	}
	var row types.ScoreHistory
	err := transaction.WithContext(ctx).
		Where("contact_id = ? AND score_type = ? AND recorded_at >= ?", contactID, scoreType, since).
		Order("score_value DESC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return row.ScoreValue, true, nil
}

func (r *scoreHistoryRepo) OldestSince(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, scoreType string, since time.Time) (*types.ScoreHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if contactID == uuid.Nil {
		return nil, nil
	}
	var row types.ScoreHistory
	err := transaction.WithContext(ctx).
		Where("contact_id = ? AND score_type = ? AND recorded_at >= ?", contactID, scoreType, since).
		Order("recorded_at ASC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
