package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
	"time"
)

type ContactRepo interface {
	Create(ctx context.Context, tx *gorm.DB, contacts []*types.Contact) ([]*types.Contact, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contact, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Contact, error)
	GetByLinkedinURL(ctx context.Context, tx *gorm.DB, url string) (*types.Contact, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Contact, error)
	ListPage(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Contact, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit, offset int) ([]*types.Contact, error)
	ListTargetsByPriority(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Contact, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, status string) (int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	TransitionStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, fromStatus, toStatus, trigger, reason string) error
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type contactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return &contactRepo{db: db, log: baseLog.With("repo", "ContactRepo")}
}

func (r *contactRepo) Create(ctx context.Context, tx *gorm.DB, contacts []*types.Contact) ([]*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(contacts) == 0 {
		return []*types.Contact{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var contact types.Contact
	err := transaction.WithContext(ctx).
		Preload("Categories").
		Where("id = ?", id).
		First(&contact).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Contact
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

func (r *contactRepo) GetByLinkedinURL(ctx context.Context, tx *gorm.DB, url string) (*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if url == "" {
		return nil, nil
	}
	var contact types.Contact
	err := transaction.WithContext(ctx).
		Where("linkedin_url = ?", url).
		First(&contact).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if email == "" {
		return nil, nil
	}
	var contact types.Contact
	err := transaction.WithContext(ctx).
		Where("email = ?", email).
		First(&contact).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// ListPage walks all non-deleted contacts in creation order. The scoring
// batch depends on a stable ordering across pages.
func (r *contactRepo) ListPage(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Contact
	if err := transaction.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contactRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit, offset int) ([]*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Contact
	q := transaction.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListTargetsByPriority orders by priority score descending with creation
// order as the tie-break, so selection is deterministic for equal scores.
func (r *contactRepo) ListTargetsByPriority(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Contact
	q := transaction.WithContext(ctx).
		Preload("Categories").
		Where("status = ?", types.StatusTarget).
		Order("priority_score DESC, created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contactRepo) CountByStatus(ctx context.Context, tx *gorm.DB, status string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Contact{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *contactRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Contact{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// TransitionStatus updates the contact status and inserts the StatusHistory
// row in a single transaction so the two can never diverge.
func (r *contactRepo) TransitionStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, fromStatus, toStatus, trigger, reason string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now()
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Model(&types.Contact{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     toStatus,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		record := &types.StatusHistory{
			ContactID:  id,
			FromStatus: fromStatus,
			ToStatus:   toStatus,
			Trigger:    trigger,
			Reason:     reason,
			CreatedAt:  now,
		}
		return txx.Create(record).Error
	})
}

func (r *contactRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Contact{}).Error
}
