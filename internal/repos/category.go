package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
)

type CategoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, categories []*types.Category) ([]*types.Category, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Category, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Category, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Category, error)
	AssignToContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, categoryIDs []uuid.UUID) error
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(ctx context.Context, tx *gorm.DB, categories []*types.Category) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(categories) == 0 {
		return []*types.Category{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var category types.Category
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&category).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if name == "" {
		return nil, nil
	}
	var category types.Category
	err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&category).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Category
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *categoryRepo) AssignToContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, categoryIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if contactID == uuid.Nil || len(categoryIDs) == 0 {
		return nil
	}
	categories, err := r.GetByIDs(ctx, transaction, categoryIDs)
	if err != nil {
		return err
	}
	contact := types.Contact{ID: contactID}
	return transaction.WithContext(ctx).
		Model(&contact).
		Association("Categories").
		Append(categories)
}

func (r *categoryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Category
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
