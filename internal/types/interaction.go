package types

import (
	"github.com/google/uuid"
	"time"
)

// Interaction types. Closed enumeration; unknown types score with weight 0.
// "Reciprocal" types are things the other person did toward us.
const (
	InteractionMeeting1on1InPerson       = "meeting_1on1_inperson"
	InteractionMeeting1on1Virtual        = "meeting_1on1_virtual"
	InteractionMeetingGroup              = "meeting_group"
	InteractionMessageSent               = "message_sent"
	InteractionMessageReceived           = "message_received"
	InteractionLikeGiven                 = "like_given"
	InteractionLikeReceived              = "like_received"
	InteractionCommentGiven              = "comment_given"
	InteractionCommentReceived           = "comment_received"
	InteractionIntroductionMade          = "introduction_made"
	InteractionIntroductionReceived      = "introduction_received"
	InteractionConnectionRequestSent     = "connection_request_sent"
	InteractionConnectionRequestAccepted = "connection_request_accepted"
	InteractionManualNote                = "manual_note"
)

var reciprocalInteractionTypes = map[string]bool{
	InteractionMessageReceived:           true,
	InteractionLikeReceived:              true,
	InteractionCommentReceived:           true,
	InteractionIntroductionReceived:      true,
	InteractionConnectionRequestAccepted: true,
}

func IsReciprocalInteraction(interactionType string) bool {
	return reciprocalInteractionTypes[interactionType]
}

func ValidInteractionType(interactionType string) bool {
	switch interactionType {
	case InteractionMeeting1on1InPerson, InteractionMeeting1on1Virtual, InteractionMeetingGroup,
		InteractionMessageSent, InteractionMessageReceived,
		InteractionLikeGiven, InteractionLikeReceived,
		InteractionCommentGiven, InteractionCommentReceived,
		InteractionIntroductionMade, InteractionIntroductionReceived,
		InteractionConnectionRequestSent, InteractionConnectionRequestAccepted,
		InteractionManualNote:
		return true
	}
	return false
}

// Outbound message types, used by follow-up candidate selection to decide
// whether we already messaged a contact since they connected.
var outboundMessageInteractionTypes = map[string]bool{
	InteractionMessageSent: true,
}

func IsOutboundMessageInteraction(interactionType string) bool {
	return outboundMessageInteractionTypes[interactionType]
}

// Interaction is an append-only event. Rows are never updated; deletion only
// happens via the contact cascade.
type Interaction struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContactID  uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact    *Contact  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContactID;references:ID" json:"contact,omitempty"`
	Type       string    `gorm:"column:type;not null;index" json:"type"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	Points     int       `gorm:"column:points;not null;default:0" json:"points"`
	Source     string    `gorm:"column:source" json:"source"` // manual|import|automation
	Notes      string    `gorm:"column:notes" json:"notes"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Interaction) TableName() string { return "interaction" }
