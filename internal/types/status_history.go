package types

import (
	"github.com/google/uuid"
	"time"
)

const (
	TriggerManual             = "manual"
	TriggerAutomatedPromotion = "automated_promotion"
	TriggerAutomatedDemotion  = "automated_demotion"
)

type StatusHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContactID  uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact    *Contact  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContactID;references:ID" json:"contact,omitempty"`
	FromStatus string    `gorm:"column:from_status;not null" json:"from_status"`
	ToStatus   string    `gorm:"column:to_status;not null;index" json:"to_status"`
	Trigger    string    `gorm:"column:trigger;not null" json:"trigger"` // manual|automated_promotion|automated_demotion
	Reason     string    `gorm:"column:reason" json:"reason"`
	CreatedAt  time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (StatusHistory) TableName() string { return "status_history" }
