package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

// Lifecycle statuses. Automated transitions only ever move one step at a
// time; manual transitions may jump anywhere.
const (
	StatusTarget       = "target"
	StatusRequested    = "requested"
	StatusConnected    = "connected"
	StatusEngaged      = "engaged"
	StatusRelationship = "relationship"
)

const (
	SeniorityCSuite   = "c_suite"
	SeniorityVP       = "vp"
	SeniorityDirector = "director"
	SeniorityManager  = "manager"
	SeniorityIC       = "ic"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusTarget, StatusRequested, StatusConnected, StatusEngaged, StatusRelationship:
		return true
	}
	return false
}

type Contact struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FirstName          string         `gorm:"not null;column:first_name" json:"first_name"`
	LastName           string         `gorm:"column:last_name" json:"last_name"`
	Company            string         `gorm:"column:company" json:"company"`
	Title              string         `gorm:"column:title" json:"title"`
	Email              string         `gorm:"column:email;index" json:"email"`
	LinkedinURL        string         `gorm:"column:linkedin_url;index" json:"linkedin_url"`
	Location           string         `gorm:"column:location" json:"location"`
	SeniorityLevel     string         `gorm:"column:seniority_level" json:"seniority_level"` // c_suite|vp|director|manager|ic
	Status             string         `gorm:"column:status;not null;default:'target';index" json:"status"`
	RelationshipScore  int            `gorm:"column:relationship_score;not null;default:0" json:"relationship_score"`
	PriorityScore      float64        `gorm:"column:priority_score;not null;default:0" json:"priority_score"`
	MutualConnections  int            `gorm:"column:mutual_connections;not null;default:0" json:"mutual_connections"`
	ActiveOnPlatform   bool           `gorm:"column:active_on_platform;not null;default:false" json:"active_on_platform"`
	IntroductionSource string         `gorm:"column:introduction_source" json:"introduction_source"`
	Notes              string         `gorm:"column:notes" json:"notes"`
	RawProfile         datatypes.JSON `gorm:"type:jsonb;column:raw_profile" json:"raw_profile,omitempty"`
	Categories         []*Category    `gorm:"many2many:contact_category;" json:"categories,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Contact) TableName() string { return "contact" }
