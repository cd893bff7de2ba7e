package services

import (
	"context"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/observability"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/scoringconfig"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
	"time"
)

// maxRelevanceProduct is the ceiling of categoryWeight * seniorityMultiplier
// (10 * 1.5) used to rescale relevance onto 0-10.
const maxRelevanceProduct = 15.0

const priorityBatchPageSize = 200

// PriorityBreakdown keeps the per-dimension components alongside the total so
// the API can explain a ranking. Timing is a reserved dimension that stays at
// zero until a real signal exists; it still participates in the weighted sum.
type PriorityBreakdown struct {
	Relevance     float64 `json:"relevance"`
	Accessibility float64 `json:"accessibility"`
	Timing        float64 `json:"timing"`
	Total         float64 `json:"total"`
}

type PriorityBatchResult struct {
	Processed int `json:"processed"`
}

type PriorityService interface {
	ScoreContact(ctx context.Context, contactID uuid.UUID, snap *scoringconfig.Snapshot) (*PriorityBreakdown, error)
	ProcessAllTargets(ctx context.Context, now time.Time) (*PriorityBatchResult, error)
}

type priorityService struct {
	db           *gorm.DB
	log          *logger.Logger
	contactRepo  repos.ContactRepo
	historyRepo  repos.ScoreHistoryRepo
	configLoader *scoringconfig.Loader
}

func NewPriorityService(db *gorm.DB, baseLog *logger.Logger, contactRepo repos.ContactRepo, historyRepo repos.ScoreHistoryRepo, configLoader *scoringconfig.Loader) PriorityService {
	return &priorityService{
		db:           db,
		log:          baseLog.With("service", "PriorityService"),
		contactRepo:  contactRepo,
		historyRepo:  historyRepo,
		configLoader: configLoader,
	}
}

// relevanceScore: the contact's best category weight (1 when uncategorized)
// times the seniority multiplier, rescaled to 0-10.
func relevanceScore(contact *types.Contact, snap *scoringconfig.Snapshot) float64 {
	bestWeight := 1.0
	for _, category := range contact.Categories {
		if float64(category.RelevanceWeight) > bestWeight {
			bestWeight = float64(category.RelevanceWeight)
		}
	}
	multiplier := snap.SeniorityMultiplier(contact.SeniorityLevel)
	return bestWeight * multiplier / maxRelevanceProduct * 10
}

// accessibilityScore: additive network-proximity signals, capped at 10.
func accessibilityScore(contact *types.Contact) float64 {
	score := 0.0
	switch {
	case contact.MutualConnections >= 5:
		score += 4
	case contact.MutualConnections >= 2:
		score += 2
	}
	if contact.ActiveOnPlatform {
		score += 2
	}
	if contact.IntroductionSource != "" {
		score += 3
	}
	if score > 10 {
		score = 10
	}
	return score
}

func timingScore() float64 {
	return 0
}

func priorityBreakdown(contact *types.Contact, snap *scoringconfig.Snapshot) *PriorityBreakdown {
	b := &PriorityBreakdown{
		Relevance:     relevanceScore(contact, snap),
		Accessibility: accessibilityScore(contact),
		Timing:        timingScore(),
	}
	b.Total = b.Relevance*snap.PriorityWeight(types.ConfigKeyPriorityRelevance, 0.5) +
		b.Accessibility*snap.PriorityWeight(types.ConfigKeyPriorityAccessibility, 0.3) +
		b.Timing*snap.PriorityWeight(types.ConfigKeyPriorityTiming, 0.2)
	return b
}

func (s *priorityService) ScoreContact(ctx context.Context, contactID uuid.UUID, snap *scoringconfig.Snapshot) (*PriorityBreakdown, error) {
	contact, err := s.contactRepo.GetByID(ctx, nil, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, nil
	}
	return priorityBreakdown(contact, snap), nil
}

// ProcessAllTargets scores contacts whose status is exactly "target"; the
// priority score only drives outbound targeting, not existing relationships.
func (s *priorityService) ProcessAllTargets(ctx context.Context, now time.Time) (*PriorityBatchResult, error) {
	ctx, span := observability.StartSpan(ctx, "priority.batch")
	defer span.End()

	snap, err := s.configLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &PriorityBatchResult{}
	offset := 0
	for {
		page, err := s.contactRepo.ListByStatus(ctx, nil, types.StatusTarget, priorityBatchPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, contact := range page {
			// ListByStatus does not preload categories; re-read with them.
			full, err := s.contactRepo.GetByID(ctx, nil, contact.ID)
			if err != nil || full == nil {
				if err != nil {
					s.log.Error("Failed to load contact for priority scoring", "contact_id", contact.ID, "error", err)
				}
				continue
			}
			breakdown := priorityBreakdown(full, snap)
			if err := s.contactRepo.UpdateFields(ctx, nil, full.ID, map[string]interface{}{
				"priority_score": breakdown.Total,
			}); err != nil {
				s.log.Error("Failed to write priority score", "contact_id", full.ID, "error", err)
				continue
			}
			if _, err := s.historyRepo.Create(ctx, nil, []*types.ScoreHistory{{
				ContactID:  full.ID,
				ScoreType:  types.ScoreTypePriority,
				ScoreValue: breakdown.Total,
				RecordedAt: now,
			}}); err != nil {
				s.log.Error("Failed to write priority score history", "contact_id", full.ID, "error", err)
				continue
			}
			result.Processed++
		}
		if len(page) < priorityBatchPageSize {
			break
		}
		offset += priorityBatchPageSize
	}

	s.log.Info("Priority batch finished", "processed", result.Processed)
	return result, nil
}
