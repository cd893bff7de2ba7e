package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
	"time"
)

type InteractionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, interactions []*types.Interaction) ([]*types.Interaction, error)
	GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Interaction, error)
	CountByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) (int64, error)
	CountReciprocalByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) (int64, error)
	ExistsOutboundMessageSince(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, since time.Time) (bool, error)
}

type interactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	return &interactionRepo{db: db, log: baseLog.With("repo", "InteractionRepo")}
}

func (r *interactionRepo) Create(ctx context.Context, tx *gorm.DB, interactions []*types.Interaction) ([]*types.Interaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(interactions) == 0 {
		return []*types.Interaction{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&interactions).Error; err != nil {
		return nil, err
	}
	return interactions, nil
}

func (r *interactionRepo) GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Interaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Interaction
	if contactID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("occurred_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *interactionRepo) CountByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if contactID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Interaction{}).
		Where("contact_id = ?", contactID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *interactionRepo) CountReciprocalByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if contactID == uuid.Nil {
		return 0, nil
	}
	reciprocal := []string{
		types.InteractionMessageReceived,
		types.InteractionLikeReceived,
		types.InteractionCommentReceived,
		types.InteractionIntroductionReceived,
		types.InteractionConnectionRequestAccepted,
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Interaction{}).
		Where("contact_id = ? AND type IN ?", contactID, reciprocal).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *interactionRepo) ExistsOutboundMessageSince(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, since time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if contactID == uuid.Nil {
		return false, nil
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Interaction{}).
		Where("contact_id = ? AND type = ? AND occurred_at >= ?", contactID, types.InteractionMessageSent, since).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
