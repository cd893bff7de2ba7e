package types

import (
	"github.com/google/uuid"
	"time"
)

const (
	ScoreTypeRelationship = "relationship"
	ScoreTypePriority     = "priority"
)

// ScoreHistory is a daily time series, one row per contact per batch run,
// written even when the score did not change.
type ScoreHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContactID  uuid.UUID `gorm:"type:uuid;not null;index:idx_score_history_contact_type" json:"contact_id"`
	Contact    *Contact  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContactID;references:ID" json:"contact,omitempty"`
	ScoreType  string    `gorm:"column:score_type;not null;index:idx_score_history_contact_type" json:"score_type"` // relationship|priority
	ScoreValue float64   `gorm:"column:score_value;not null" json:"score_value"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null;index" json:"recorded_at"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ScoreHistory) TableName() string { return "score_history" }
