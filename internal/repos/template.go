package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
	"time"
)

type TemplateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, templates []*types.MessageTemplate) ([]*types.MessageTemplate, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MessageTemplate, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.MessageTemplate, error)
	BestForCategories(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID) (*types.MessageTemplate, error)
	IncrementTimesUsed(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type templateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateRepo(db *gorm.DB, baseLog *logger.Logger) TemplateRepo {
	return &templateRepo{db: db, log: baseLog.With("repo", "TemplateRepo")}
}

func (r *templateRepo) Create(ctx context.Context, tx *gorm.DB, templates []*types.MessageTemplate) ([]*types.MessageTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(templates) == 0 {
		return []*types.MessageTemplate{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MessageTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var tpl types.MessageTemplate
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&tpl).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ListActive orders least-used first so template rotation spreads usage.
func (r *templateRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.MessageTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MessageTemplate
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("times_used ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *templateRepo) BestForCategories(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID) (*types.MessageTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	var tpl types.MessageTemplate
	err := transaction.WithContext(ctx).
		Where("is_active = ? AND category_id IN ?", true, categoryIDs).
		Order("times_used ASC, created_at ASC").
		First(&tpl).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepo) IncrementTimesUsed(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.MessageTemplate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"times_used": gorm.Expr("times_used + 1"),
			"updated_at": time.Now(),
		}).Error
}

func (r *templateRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.MessageTemplate{}).
		Where("id = ?", id).
		Updates(updates).Error
}
