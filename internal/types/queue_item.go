package types

import (
	"github.com/google/uuid"
	"time"
)

const (
	QueueActionConnectionRequest = "connection_request"
	QueueActionFollowUp          = "follow_up"
	QueueActionReEngagement      = "re_engagement"
)

const (
	QueueStatusPending  = "pending"
	QueueStatusApproved = "approved"
	QueueStatusExecuted = "executed"
	QueueStatusSkipped  = "skipped"
	QueueStatusSnoozed  = "snoozed"
)

// ActiveQueueStatuses are the statuses that make an item count as unresolved:
// a contact holding one is never re-queued.
var ActiveQueueStatuses = []string{QueueStatusPending, QueueStatusApproved}

type QueueItem struct {
	ID                  uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContactID           uuid.UUID        `gorm:"type:uuid;not null;index:idx_queue_contact_date" json:"contact_id"`
	Contact             *Contact         `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContactID;references:ID" json:"contact,omitempty"`
	QueueDate           time.Time        `gorm:"column:queue_date;type:date;not null;index:idx_queue_contact_date" json:"queue_date"`
	ActionType          string           `gorm:"column:action_type;not null;index" json:"action_type"` // connection_request|follow_up|re_engagement
	Status              string           `gorm:"column:status;not null;default:'pending';index" json:"status"`
	TemplateID          *uuid.UUID       `gorm:"type:uuid;column:template_id" json:"template_id,omitempty"`
	Template            *MessageTemplate `gorm:"foreignKey:TemplateID;references:ID" json:"template,omitempty"`
	PersonalizedMessage string           `gorm:"column:personalized_message" json:"personalized_message"`
	Notes               string           `gorm:"column:notes" json:"notes"`
	ExecutedAt          *time.Time       `gorm:"column:executed_at" json:"executed_at,omitempty"`
	SnoozeUntil         *time.Time       `gorm:"column:snooze_until" json:"snooze_until,omitempty"`
	CreatedAt           time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (QueueItem) TableName() string { return "queue_item" }
