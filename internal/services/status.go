package services

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
	"time"
)

// Promotion and demotion guards. Demotion looks for the absence of any
// qualifying score snapshot in the trailing window, not a countdown.
const (
	engagedScoreThreshold      = 30
	engagedMinInteractions     = 2
	relationshipScoreThreshold = 60
	relationshipMinReciprocal  = 1
	demotionEvidenceWindowDays = 30
)

// Transition describes an applied status change. A nil *Transition from the
// check entry points means "nothing to do", which is a normal outcome.
type Transition struct {
	ContactID  uuid.UUID `json:"contact_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Trigger    string    `json:"trigger"`
	Reason     string    `json:"reason"`
}

type StatusService interface {
	CheckPromotion(ctx context.Context, contactID uuid.UUID, now time.Time) (*Transition, error)
	CheckDemotion(ctx context.Context, contactID uuid.UUID, now time.Time) (*Transition, error)
	ManualTransition(ctx context.Context, contactID uuid.UUID, newStatus, reason string) (*Transition, error)
}

type statusService struct {
	db              *gorm.DB
	log             *logger.Logger
	contactRepo     repos.ContactRepo
	interactionRepo repos.InteractionRepo
	historyRepo     repos.ScoreHistoryRepo
}

func NewStatusService(db *gorm.DB, baseLog *logger.Logger, contactRepo repos.ContactRepo, interactionRepo repos.InteractionRepo, historyRepo repos.ScoreHistoryRepo) StatusService {
	return &statusService{
		db:              db,
		log:             baseLog.With("service", "StatusService"),
		contactRepo:     contactRepo,
		interactionRepo: interactionRepo,
		historyRepo:     historyRepo,
	}
}

// CheckPromotion advances a contact at most one step. Guards are evaluated
// against the current status only; a contact never skips a stage in one call.
func (s *statusService) CheckPromotion(ctx context.Context, contactID uuid.UUID, now time.Time) (*Transition, error) {
	contact, err := s.contactRepo.GetByID(ctx, nil, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, nil
	}

	switch contact.Status {
	case types.StatusConnected:
		if contact.RelationshipScore < engagedScoreThreshold {
			return nil, nil
		}
		total, err := s.interactionRepo.CountByContactID(ctx, nil, contact.ID)
		if err != nil {
			return nil, err
		}
		if total < engagedMinInteractions {
			return nil, nil
		}
		reason := fmt.Sprintf("score %d >= %d with %d interactions", contact.RelationshipScore, engagedScoreThreshold, total)
		return s.apply(ctx, contact, types.StatusEngaged, types.TriggerAutomatedPromotion, reason)

	case types.StatusEngaged:
		if contact.RelationshipScore < relationshipScoreThreshold {
			return nil, nil
		}
		reciprocal, err := s.interactionRepo.CountReciprocalByContactID(ctx, nil, contact.ID)
		if err != nil {
			return nil, err
		}
		if reciprocal < relationshipMinReciprocal {
			return nil, nil
		}
		reason := fmt.Sprintf("score %d >= %d with %d reciprocal interactions", contact.RelationshipScore, relationshipScoreThreshold, reciprocal)
		return s.apply(ctx, contact, types.StatusRelationship, types.TriggerAutomatedPromotion, reason)
	}
	return nil, nil
}

// CheckDemotion drops a contact one step when the current score is below the
// stage threshold and no ScoreHistory snapshot at or above the threshold
// exists in the trailing window. A single qualifying data point blocks it.
func (s *statusService) CheckDemotion(ctx context.Context, contactID uuid.UUID, now time.Time) (*Transition, error) {
	contact, err := s.contactRepo.GetByID(ctx, nil, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, nil
	}

	var threshold int
	var demoteTo string
	switch contact.Status {
	case types.StatusRelationship:
		threshold = relationshipScoreThreshold
		demoteTo = types.StatusEngaged
	case types.StatusEngaged:
		threshold = engagedScoreThreshold
		demoteTo = types.StatusConnected
	default:
		return nil, nil
	}

	if contact.RelationshipScore >= threshold {
		return nil, nil
	}
	windowStart := now.AddDate(0, 0, -demotionEvidenceWindowDays)
	maxInWindow, found, err := s.historyRepo.MaxValueSince(ctx, nil, contact.ID, types.ScoreTypeRelationship, windowStart)
	if err != nil {
		return nil, err
	}
	if found && maxInWindow >= float64(threshold) {
		return nil, nil
	}
	reason := fmt.Sprintf("score %d below %d with no snapshot >= %d in the last %d days", contact.RelationshipScore, threshold, threshold, demotionEvidenceWindowDays)
	return s.apply(ctx, contact, demoteTo, types.TriggerAutomatedDemotion, reason)
}

// ManualTransition bypasses every guard. Same-status requests are a no-op.
func (s *statusService) ManualTransition(ctx context.Context, contactID uuid.UUID, newStatus, reason string) (*Transition, error) {
	if !types.ValidStatus(newStatus) {
		return nil, fmt.Errorf("invalid status %q", newStatus)
	}
	contact, err := s.contactRepo.GetByID(ctx, nil, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, nil
	}
	if contact.Status == newStatus {
		return nil, nil
	}
	if reason == "" {
		reason = "manual status change"
	}
	return s.apply(ctx, contact, newStatus, types.TriggerManual, reason)
}

func (s *statusService) apply(ctx context.Context, contact *types.Contact, toStatus, trigger, reason string) (*Transition, error) {
	if err := s.contactRepo.TransitionStatus(ctx, nil, contact.ID, contact.Status, toStatus, trigger, reason); err != nil {
		return nil, err
	}
	s.log.Info("Status transition applied", "contact_id", contact.ID, "from", contact.Status, "to", toStatus, "trigger", trigger)
	return &Transition{
		ContactID:  contact.ID,
		FromStatus: contact.Status,
		ToStatus:   toStatus,
		Trigger:    trigger,
		Reason:     reason,
	}, nil
}
