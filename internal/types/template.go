package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

// MessageTemplate bodies carry {first_name}-style tokens that queue
// generation substitutes at enqueue time.
type MessageTemplate struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name       string         `gorm:"not null;column:name" json:"name"`
	Body       string         `gorm:"not null;column:body" json:"body"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	TimesUsed  int            `gorm:"column:times_used;not null;default:0" json:"times_used"`
	CategoryID *uuid.UUID     `gorm:"type:uuid;column:category_id;index" json:"category_id,omitempty"`
	Category   *Category      `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MessageTemplate) TableName() string { return "message_template" }
