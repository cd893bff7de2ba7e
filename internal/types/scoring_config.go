package types

import (
	"github.com/google/uuid"
	"time"
)

const (
	ConfigTypeRelationshipWeight = "relationship_weight"
	ConfigTypePriorityWeight     = "priority_weight"
	ConfigTypeGeneral            = "general"
)

// General tunable keys.
const (
	ConfigKeyHalfLifeDays             = "half_life_days"
	ConfigKeyReciprocityThreshold     = "reciprocity_threshold"
	ConfigKeyReciprocityMultiplierMin = "reciprocity_multiplier_min"
	ConfigKeyReciprocityMultiplierMax = "reciprocity_multiplier_max"
	ConfigKeySeniorityCSuite          = "seniority_multiplier_c_suite"
	ConfigKeySeniorityVP              = "seniority_multiplier_vp"
	ConfigKeySeniorityDirector        = "seniority_multiplier_director"
	ConfigKeySeniorityManager         = "seniority_multiplier_manager"
	ConfigKeySeniorityIC              = "seniority_multiplier_ic"
)

// Priority dimension keys.
const (
	ConfigKeyPriorityRelevance     = "relevance"
	ConfigKeyPriorityAccessibility = "accessibility"
	ConfigKeyPriorityTiming        = "timing"
)

// ScoringConfig rows are read fresh at the start of every batch run and never
// written by the engines themselves.
type ScoringConfig struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConfigType  string    `gorm:"column:config_type;not null;uniqueIndex:idx_config_type_key" json:"config_type"`
	Key         string    `gorm:"column:key;not null;uniqueIndex:idx_config_type_key" json:"key"`
	Value       float64   `gorm:"column:value;not null" json:"value"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ScoringConfig) TableName() string { return "scoring_config" }
