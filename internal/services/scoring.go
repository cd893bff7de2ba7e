package services

import (
	"context"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/observability"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/scoringconfig"
	"github.com/linkforge/linkforge-backend/internal/types"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"math"
	"sync"
	"time"
)

// maxExpectedPoints calibrates normalization: roughly ten high-value recent
// interactions put a contact at 100.
const maxExpectedPoints = 150.0

const scoreBatchPageSize = 200

// scoreBatchWorkers bounds per-page parallelism. Each contact's writes are an
// independent transaction, so contacts can be scored concurrently.
const scoreBatchWorkers = 4

type ScoreBatchResult struct {
	Processed   int `json:"processed"`
	Updated     int `json:"updated"`
	Transitions int `json:"transitions"`
}

type ScoringService interface {
	ScoreContact(ctx context.Context, contactID uuid.UUID, snap *scoringconfig.Snapshot, now time.Time) (int, error)
	ProcessAllContactScores(ctx context.Context, now time.Time) (*ScoreBatchResult, error)
}

type scoringService struct {
	db              *gorm.DB
	log             *logger.Logger
	contactRepo     repos.ContactRepo
	interactionRepo repos.InteractionRepo
	historyRepo     repos.ScoreHistoryRepo
	configLoader    *scoringconfig.Loader
	statusService   StatusService
}

func NewScoringService(db *gorm.DB, baseLog *logger.Logger, contactRepo repos.ContactRepo, interactionRepo repos.InteractionRepo, historyRepo repos.ScoreHistoryRepo, configLoader *scoringconfig.Loader, statusService StatusService) ScoringService {
	return &scoringService{
		db:              db,
		log:             baseLog.With("service", "ScoringService"),
		contactRepo:     contactRepo,
		interactionRepo: interactionRepo,
		historyRepo:     historyRepo,
		configLoader:    configLoader,
		statusService:   statusService,
	}
}

// decayFactor is the exponential recency decay: 1.0 at zero days, 0.5 at one
// half-life, 0.25 at two.
func decayFactor(daysSince, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 {
		return 1.0
	}
	if daysSince < 0 {
		daysSince = 0
	}
	return math.Pow(0.5, daysSince/halfLifeDays)
}

// reciprocityMultiplier rewards two-way relationships. Below the threshold
// fraction there is no bonus; from the threshold to 100% reciprocal the bonus
// interpolates linearly between the configured min and max.
func reciprocityMultiplier(reciprocalFraction float64, t scoringconfig.Tunables) float64 {
	if reciprocalFraction < t.ReciprocityThreshold {
		return 1.0
	}
	span := 1.0 - t.ReciprocityThreshold
	if span <= 0 {
		return t.ReciprocityMultiplierMax
	}
	progress := (reciprocalFraction - t.ReciprocityThreshold) / span
	if progress > 1 {
		progress = 1
	}
	return t.ReciprocityMultiplierMin + (t.ReciprocityMultiplierMax-t.ReciprocityMultiplierMin)*progress
}

// relationshipScore folds a contact's interaction history into a 0-100
// integer. Pure: everything it needs is in its arguments.
func relationshipScore(interactions []*types.Interaction, snap *scoringconfig.Snapshot, now time.Time) int {
	if len(interactions) == 0 {
		return 0
	}
	var rawPoints float64
	reciprocal := 0
	for _, interaction := range interactions {
		weight := snap.RelationshipWeight(interaction.Type)
		daysSince := now.Sub(interaction.OccurredAt).Hours() / 24
		rawPoints += weight * decayFactor(daysSince, snap.Tunables.HalfLifeDays)
		if types.IsReciprocalInteraction(interaction.Type) {
			reciprocal++
		}
	}
	fraction := float64(reciprocal) / float64(len(interactions))
	rawPoints *= reciprocityMultiplier(fraction, snap.Tunables)
	score := int(math.Round(rawPoints / maxExpectedPoints * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func (s *scoringService) ScoreContact(ctx context.Context, contactID uuid.UUID, snap *scoringconfig.Snapshot, now time.Time) (int, error) {
	interactions, err := s.interactionRepo.GetByContactID(ctx, nil, contactID)
	if err != nil {
		return 0, err
	}
	return relationshipScore(interactions, snap, now), nil
}

// ProcessAllContactScores walks every non-deleted contact in fixed-size
// pages, recomputes the relationship score, writes it when changed, appends
// the daily ScoreHistory snapshot, then runs the status checks. One bad
// contact never aborts the batch.
func (s *scoringService) ProcessAllContactScores(ctx context.Context, now time.Time) (*ScoreBatchResult, error) {
	ctx, span := observability.StartSpan(ctx, "scoring.batch")
	defer span.End()

	snap, err := s.configLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &ScoreBatchResult{}
	var mu sync.Mutex

	offset := 0
	for {
		page, err := s.contactRepo.ListPage(ctx, nil, scoreBatchPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(scoreBatchWorkers)
		for _, contact := range page {
			contact := contact
			g.Go(func() error {
				updated, transitions, perr := s.processOne(gctx, contact, snap, now)
				if perr != nil {
					// Isolate the failure; the rest of the batch continues.
					s.log.Error("Failed to score contact", "contact_id", contact.ID, "error", perr)
					return nil
				}
				mu.Lock()
				result.Processed++
				if updated {
					result.Updated++
				}
				result.Transitions += transitions
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if len(page) < scoreBatchPageSize {
			break
		}
		offset += scoreBatchPageSize
	}

	s.log.Info("Score batch finished", "processed", result.Processed, "updated", result.Updated, "transitions", result.Transitions)
	return result, nil
}

func (s *scoringService) processOne(ctx context.Context, contact *types.Contact, snap *scoringconfig.Snapshot, now time.Time) (bool, int, error) {
	newScore, err := s.ScoreContact(ctx, contact.ID, snap, now)
	if err != nil {
		return false, 0, err
	}

	updated := false
	if newScore != contact.RelationshipScore {
		if err := s.contactRepo.UpdateFields(ctx, nil, contact.ID, map[string]interface{}{
			"relationship_score": newScore,
		}); err != nil {
			return false, 0, err
		}
		updated = true
	}

	// History is a daily time series, not a change log: append even when the
	// score is unchanged.
	if _, err := s.historyRepo.Create(ctx, nil, []*types.ScoreHistory{{
		ContactID:  contact.ID,
		ScoreType:  types.ScoreTypeRelationship,
		ScoreValue: float64(newScore),
		RecordedAt: now,
	}}); err != nil {
		return updated, 0, err
	}

	transitions := 0
	promotion, err := s.statusService.CheckPromotion(ctx, contact.ID, now)
	if err != nil {
		return updated, transitions, err
	}
	if promotion != nil {
		transitions++
	}
	demotion, err := s.statusService.CheckDemotion(ctx, contact.ID, now)
	if err != nil {
		return updated, transitions, err
	}
	if demotion != nil {
		transitions++
	}
	return updated, transitions, nil
}
