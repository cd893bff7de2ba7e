package repos

import (
	"context"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

type ScoringConfigRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.ScoringConfig, error)
	SeedDefaults(ctx context.Context, tx *gorm.DB, rows []*types.ScoringConfig) error
	SetValue(ctx context.Context, tx *gorm.DB, configType, key string, value float64) error
}

type scoringConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoringConfigRepo(db *gorm.DB, baseLog *logger.Logger) ScoringConfigRepo {
	return &scoringConfigRepo{db: db, log: baseLog.With("repo", "ScoringConfigRepo")}
}

func (r *scoringConfigRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.ScoringConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ScoringConfig
	if err := transaction.WithContext(ctx).
		Order("config_type ASC, key ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SeedDefaults inserts missing rows only; operator edits are never clobbered.
func (r *scoringConfigRepo) SeedDefaults(ctx context.Context, tx *gorm.DB, rows []*types.ScoringConfig) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_type"}, {Name: "key"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

// SetValue upserts on (config_type, key) so operators can add tunables that
// were never seeded, not just edit existing ones.
func (r *scoringConfigRepo) SetValue(ctx context.Context, tx *gorm.DB, configType, key string, value float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.ScoringConfig{
		ConfigType: configType,
		Key:        key,
		Value:      value,
		UpdatedAt:  time.Now(),
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_type"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(row).Error
}
