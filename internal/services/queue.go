package services

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/observability"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/scoringconfig"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/gorm"
	"time"
)

const (
	defaultMaxNewRequests = 5
	defaultWeeklyLimit    = 25

	followUpWindowDays = 7
	followUpSampleSize = 10
	followUpScanLimit  = 50

	reEngagementWindowDays    = 30
	reEngagementDropThreshold = 15.0

	targetSelectionPageSize = 50
	reEngagementPageSize    = 200
)

var ErrRateLimited = errors.New("action rate limit reached")

// ActionLimiter is the live per-action counter (redis-backed in production).
// It is distinct from the weekly cap queue generation computes from the
// queue_item table: the limiter guards the moment of execution.
type ActionLimiter interface {
	TryAcquire(ctx context.Context, action string, limit int64, window time.Duration) (bool, error)
}

// QueueNotifier receives the summary of a finished generation run.
type QueueNotifier interface {
	QueueGenerated(ctx context.Context, queueDate time.Time, result *QueueGenerationResult) error
}

type QueueOptions struct {
	QueueDate      time.Time `json:"queue_date"`
	MaxNewRequests int       `json:"max_new_requests"`
	WeeklyLimit    int       `json:"weekly_limit"`
}

type QueueGenerationResult struct {
	ConnectionRequests int `json:"connection_requests"`
	FollowUps          int `json:"follow_ups"`
	ReEngagements      int `json:"re_engagements"`
	CarriedOver        int `json:"carried_over"`
	Total              int `json:"total"`
	FlaggedForEditing  int `json:"flagged_for_editing"`
}

type QueueService interface {
	GenerateDailyQueue(ctx context.Context, opts QueueOptions) (*QueueGenerationResult, error)
	ListForDate(ctx context.Context, date time.Time) ([]*types.QueueItem, error)
	ApproveItem(ctx context.Context, id uuid.UUID) (*types.QueueItem, error)
	SkipItem(ctx context.Context, id uuid.UUID) (*types.QueueItem, error)
	SnoozeItem(ctx context.Context, id uuid.UUID, until time.Time) (*types.QueueItem, error)
	ExecuteItem(ctx context.Context, id uuid.UUID, now time.Time) (*types.QueueItem, error)
}

type queueService struct {
	db                *gorm.DB
	log               *logger.Logger
	queueRepo         repos.QueueItemRepo
	contactRepo       repos.ContactRepo
	interactionRepo   repos.InteractionRepo
	scoreHistoryRepo  repos.ScoreHistoryRepo
	statusHistoryRepo repos.StatusHistoryRepo
	templateRepo      repos.TemplateRepo
	configLoader      *scoringconfig.Loader
	limiter           ActionLimiter
	notifier          QueueNotifier
	dailyActionLimit  int64
}

func NewQueueService(db *gorm.DB, baseLog *logger.Logger, queueRepo repos.QueueItemRepo, contactRepo repos.ContactRepo, interactionRepo repos.InteractionRepo, scoreHistoryRepo repos.ScoreHistoryRepo, statusHistoryRepo repos.StatusHistoryRepo, templateRepo repos.TemplateRepo, configLoader *scoringconfig.Loader, limiter ActionLimiter, notifier QueueNotifier, dailyActionLimit int64) QueueService {
	return &queueService{
		db:                db,
		log:               baseLog.With("service", "QueueService"),
		queueRepo:         queueRepo,
		contactRepo:       contactRepo,
		interactionRepo:   interactionRepo,
		scoreHistoryRepo:  scoreHistoryRepo,
		statusHistoryRepo: statusHistoryRepo,
		templateRepo:      templateRepo,
		configLoader:      configLoader,
		limiter:           limiter,
		notifier:          notifier,
		dailyActionLimit:  dailyActionLimit,
	}
}

// GenerateDailyQueue builds the day's ranked action list. Re-running within
// the same day is safe: every step consults the accumulating "already queued"
// set, so no contact ever gets a second active item.
func (s *queueService) GenerateDailyQueue(ctx context.Context, opts QueueOptions) (*QueueGenerationResult, error) {
	ctx, span := observability.StartSpan(ctx, "queue.generate")
	defer span.End()

	queueDate := opts.QueueDate
	if queueDate.IsZero() {
		queueDate = time.Now()
	}
	queueDate = startOfDay(queueDate)
	maxNewRequests := opts.MaxNewRequests
	if maxNewRequests <= 0 {
		maxNewRequests = defaultMaxNewRequests
	}
	weeklyLimit := opts.WeeklyLimit
	if weeklyLimit <= 0 {
		weeklyLimit = defaultWeeklyLimit
	}

	result := &QueueGenerationResult{}

	// Step 1: weekly cap. Stop before any write when the week is spent.
	weekStart := mondayOf(queueDate)
	weekEnd := weekStart.AddDate(0, 0, 7)
	used, err := s.queueRepo.WeeklyConnectionRequestUsage(ctx, nil, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	weeklyRemaining := weeklyLimit - int(used)
	if weeklyRemaining <= 0 {
		s.log.Info("Weekly connection request cap reached, skipping queue generation", "used", used, "limit", weeklyLimit)
		return result, nil
	}

	// Connection requests already on today's queue, measured before carry-over
	// so re-runs don't double-spend the day budget.
	todayRequests, err := s.queueRepo.CountByActionTypeOn(ctx, nil, queueDate, types.QueueActionConnectionRequest)
	if err != nil {
		return nil, err
	}

	// Step 2: carry-over. Stale pending items move to today, they are not
	// duplicated, and each consumes a unit of the new-request budget.
	carriedRequests, err := s.carryOver(ctx, queueDate, result)
	if err != nil {
		return nil, err
	}

	queued, err := s.alreadyQueued(ctx, queueDate)
	if err != nil {
		return nil, err
	}

	// Step 3: new connection requests for the highest-priority targets.
	dayBudget := maxNewRequests - int(todayRequests) - result.CarriedOver
	newBudget := minInt(dayBudget, weeklyRemaining-carriedRequests)
	if newBudget > 0 {
		if err := s.queueConnectionRequests(ctx, queueDate, newBudget, queued, result); err != nil {
			return nil, err
		}
	}

	// Step 4: follow-ups for recently connected contacts we never messaged.
	if err := s.queueFollowUps(ctx, queueDate, queued, result); err != nil {
		return nil, err
	}

	// Step 5: re-engagements for relationships whose score is sliding.
	if err := s.queueReEngagements(ctx, queueDate, queued, result); err != nil {
		return nil, err
	}

	result.Total = result.ConnectionRequests + result.FollowUps + result.ReEngagements + result.CarriedOver
	s.log.Info("Daily queue generated",
		"queue_date", queueDate.Format("2006-01-02"),
		"connection_requests", result.ConnectionRequests,
		"follow_ups", result.FollowUps,
		"re_engagements", result.ReEngagements,
		"carried_over", result.CarriedOver,
		"flagged", result.FlaggedForEditing)

	if s.notifier != nil {
		if err := s.notifier.QueueGenerated(ctx, queueDate, result); err != nil {
			s.log.Warn("Queue summary notification failed", "error", err)
		}
	}
	return result, nil
}

func (s *queueService) carryOver(ctx context.Context, queueDate time.Time, result *QueueGenerationResult) (int, error) {
	stale, err := s.queueRepo.ListPendingBefore(ctx, nil, queueDate)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, 0, len(stale))
	carriedRequests := 0
	for _, item := range stale {
		ids = append(ids, item.ID)
		if item.ActionType == types.QueueActionConnectionRequest {
			carriedRequests++
		}
	}
	if err := s.queueRepo.RescheduleToDate(ctx, nil, ids, queueDate); err != nil {
		return 0, err
	}
	result.CarriedOver = len(stale)
	return carriedRequests, nil
}

// alreadyQueued is the disjointness set threaded through steps 3-5: today's
// active items plus unresolved items from earlier days.
func (s *queueService) alreadyQueued(ctx context.Context, queueDate time.Time) (map[uuid.UUID]bool, error) {
	queued, err := s.queueRepo.ActiveContactIDsOn(ctx, nil, queueDate)
	if err != nil {
		return nil, err
	}
	unresolved, err := s.queueRepo.ActiveContactIDsBefore(ctx, nil, queueDate)
	if err != nil {
		return nil, err
	}
	for id := range unresolved {
		queued[id] = true
	}
	return queued, nil
}

func (s *queueService) queueConnectionRequests(ctx context.Context, queueDate time.Time, budget int, queued map[uuid.UUID]bool, result *QueueGenerationResult) error {
	activeTemplates, err := s.templateRepo.ListActive(ctx, nil)
	if err != nil {
		return err
	}

	offset := 0
	for result.ConnectionRequests < budget {
		page, err := s.contactRepo.ListTargetsByPriority(ctx, nil, targetSelectionPageSize, offset)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}
		for _, contact := range page {
			if result.ConnectionRequests >= budget {
				break
			}
			if queued[contact.ID] {
				continue
			}
			template, err := s.resolveTemplate(ctx, contact, activeTemplates)
			if err != nil {
				s.log.Error("Template resolution failed", "contact_id", contact.ID, "error", err)
				continue
			}
			item := &types.QueueItem{
				ContactID:  contact.ID,
				QueueDate:  queueDate,
				ActionType: types.QueueActionConnectionRequest,
				Status:     types.QueueStatusPending,
			}
			if template != nil {
				item.TemplateID = &template.ID
				item.PersonalizedMessage = renderTemplate(template.Body, contact)
				if exceedsCharLimit(item.PersonalizedMessage) {
					// Flag for manual editing but enqueue anyway.
					item.Notes = fmt.Sprintf("%s (%d chars) - edit before sending", flagNotePrefix, len(item.PersonalizedMessage))
					result.FlaggedForEditing++
				}
			}
			if _, err := s.queueRepo.Create(ctx, nil, []*types.QueueItem{item}); err != nil {
				s.log.Error("Failed to create connection request item", "contact_id", contact.ID, "error", err)
				continue
			}
			queued[contact.ID] = true
			result.ConnectionRequests++
		}
		if len(page) < targetSelectionPageSize {
			break
		}
		offset += targetSelectionPageSize
	}
	return nil
}

// resolveTemplate prefers the least-used active template matching one of the
// contact's categories, then falls back to the least-used active template.
func (s *queueService) resolveTemplate(ctx context.Context, contact *types.Contact, activeTemplates []*types.MessageTemplate) (*types.MessageTemplate, error) {
	if len(contact.Categories) > 0 {
		categoryIDs := make([]uuid.UUID, 0, len(contact.Categories))
		for _, category := range contact.Categories {
			categoryIDs = append(categoryIDs, category.ID)
		}
		match, err := s.templateRepo.BestForCategories(ctx, nil, categoryIDs)
		if err != nil {
			return nil, err
		}
		if match != nil {
			return match, nil
		}
	}
	if len(activeTemplates) > 0 {
		return activeTemplates[0], nil
	}
	return nil, nil
}

func (s *queueService) queueFollowUps(ctx context.Context, queueDate time.Time, queued map[uuid.UUID]bool, result *QueueGenerationResult) error {
	since := queueDate.AddDate(0, 0, -followUpWindowDays)
	transitions, err := s.statusHistoryRepo.ListTransitionsIntoSince(ctx, nil, types.StatusConnected, since, followUpScanLimit)
	if err != nil {
		return err
	}
	for _, transition := range transitions {
		if result.FollowUps >= followUpSampleSize {
			break
		}
		if queued[transition.ContactID] {
			continue
		}
		contact, err := s.contactRepo.GetByID(ctx, nil, transition.ContactID)
		if err != nil {
			s.log.Error("Failed to load follow-up candidate", "contact_id", transition.ContactID, "error", err)
			continue
		}
		if contact == nil || contact.Status != types.StatusConnected {
			continue
		}
		messaged, err := s.interactionRepo.ExistsOutboundMessageSince(ctx, nil, contact.ID, transition.CreatedAt)
		if err != nil {
			s.log.Error("Failed to check outbound messages", "contact_id", contact.ID, "error", err)
			continue
		}
		if messaged {
			continue
		}
		item := &types.QueueItem{
			ContactID:  contact.ID,
			QueueDate:  queueDate,
			ActionType: types.QueueActionFollowUp,
			Status:     types.QueueStatusPending,
			Notes:      fmt.Sprintf("Connected on %s, no message sent yet", transition.CreatedAt.Format("2006-01-02")),
		}
		if _, err := s.queueRepo.Create(ctx, nil, []*types.QueueItem{item}); err != nil {
			s.log.Error("Failed to create follow-up item", "contact_id", contact.ID, "error", err)
			continue
		}
		queued[contact.ID] = true
		result.FollowUps++
	}
	return nil
}

func (s *queueService) queueReEngagements(ctx context.Context, queueDate time.Time, queued map[uuid.UUID]bool, result *QueueGenerationResult) error {
	windowStart := queueDate.AddDate(0, 0, -reEngagementWindowDays)
	for _, status := range []string{types.StatusEngaged, types.StatusRelationship} {
		offset := 0
		for {
			page, err := s.contactRepo.ListByStatus(ctx, nil, status, reEngagementPageSize, offset)
			if err != nil {
				return err
			}
			if len(page) == 0 {
				break
			}
			for _, contact := range page {
				if queued[contact.ID] {
					continue
				}
				oldest, err := s.scoreHistoryRepo.OldestSince(ctx, nil, contact.ID, types.ScoreTypeRelationship, windowStart)
				if err != nil {
					s.log.Error("Failed to load score history", "contact_id", contact.ID, "error", err)
					continue
				}
				if oldest == nil {
					continue
				}
				drop := oldest.ScoreValue - float64(contact.RelationshipScore)
				if drop <= reEngagementDropThreshold {
					continue
				}
				item := &types.QueueItem{
					ContactID:  contact.ID,
					QueueDate:  queueDate,
					ActionType: types.QueueActionReEngagement,
					Status:     types.QueueStatusPending,
					Notes:      fmt.Sprintf("Score dropped %.0f points (from %.0f to %d) in the last %d days", drop, oldest.ScoreValue, contact.RelationshipScore, reEngagementWindowDays),
				}
				if _, err := s.queueRepo.Create(ctx, nil, []*types.QueueItem{item}); err != nil {
					s.log.Error("Failed to create re-engagement item", "contact_id", contact.ID, "error", err)
					continue
				}
				queued[contact.ID] = true
				result.ReEngagements++
			}
			if len(page) < reEngagementPageSize {
				break
			}
			offset += reEngagementPageSize
		}
	}
	return nil
}

func (s *queueService) ListForDate(ctx context.Context, date time.Time) ([]*types.QueueItem, error) {
	return s.queueRepo.ListForDate(ctx, nil, startOfDay(date))
}

func (s *queueService) ApproveItem(ctx context.Context, id uuid.UUID) (*types.QueueItem, error) {
	return s.setStatus(ctx, id, types.QueueStatusApproved, []string{types.QueueStatusPending}, nil)
}

func (s *queueService) SkipItem(ctx context.Context, id uuid.UUID) (*types.QueueItem, error) {
	return s.setStatus(ctx, id, types.QueueStatusSkipped, types.ActiveQueueStatuses, nil)
}

func (s *queueService) SnoozeItem(ctx context.Context, id uuid.UUID, until time.Time) (*types.QueueItem, error) {
	return s.setStatus(ctx, id, types.QueueStatusSnoozed, types.ActiveQueueStatuses, map[string]interface{}{
		"snooze_until": until,
	})
}

// ExecuteItem marks the item done, records the outbound interaction, bumps
// template usage, and spends a unit of the live action counter. Connection
// requests also move the contact from target to requested.
func (s *queueService) ExecuteItem(ctx context.Context, id uuid.UUID, now time.Time) (*types.QueueItem, error) {
	item, err := s.queueRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	if item.Status != types.QueueStatusPending && item.Status != types.QueueStatusApproved {
		return nil, fmt.Errorf("queue item is %s, cannot execute", item.Status)
	}

	if s.limiter != nil && s.dailyActionLimit > 0 {
		allowed, err := s.limiter.TryAcquire(ctx, item.ActionType, s.dailyActionLimit, 24*time.Hour)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrRateLimited
		}
	}

	if err := s.queueRepo.UpdateFields(ctx, nil, item.ID, map[string]interface{}{
		"status":      types.QueueStatusExecuted,
		"executed_at": now,
	}); err != nil {
		return nil, err
	}

	interactionType := types.InteractionMessageSent
	if item.ActionType == types.QueueActionConnectionRequest {
		interactionType = types.InteractionConnectionRequestSent
	}
	snap, err := s.configLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.interactionRepo.Create(ctx, nil, []*types.Interaction{{
		ContactID:  item.ContactID,
		Type:       interactionType,
		OccurredAt: now,
		Points:     int(snap.RelationshipWeight(interactionType)),
		Source:     "automation",
	}}); err != nil {
		return nil, err
	}

	if item.TemplateID != nil {
		if err := s.templateRepo.IncrementTimesUsed(ctx, nil, *item.TemplateID); err != nil {
			s.log.Warn("Failed to bump template usage", "template_id", *item.TemplateID, "error", err)
		}
	}

	if item.ActionType == types.QueueActionConnectionRequest {
		contact, err := s.contactRepo.GetByID(ctx, nil, item.ContactID)
		if err == nil && contact != nil && contact.Status == types.StatusTarget {
			if terr := s.contactRepo.TransitionStatus(ctx, nil, contact.ID, types.StatusTarget, types.StatusRequested, types.TriggerManual, "connection request sent"); terr != nil {
				s.log.Error("Failed to move contact to requested", "contact_id", contact.ID, "error", terr)
			}
		}
	}

	return s.queueRepo.GetByID(ctx, nil, item.ID)
}

func (s *queueService) setStatus(ctx context.Context, id uuid.UUID, toStatus string, allowedFrom []string, extra map[string]interface{}) (*types.QueueItem, error) {
	item, err := s.queueRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	allowed := false
	for _, from := range allowedFrom {
		if item.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("queue item is %s, cannot move to %s", item.Status, toStatus)
	}
	updates := map[string]interface{}{"status": toStatus}
	for k, v := range extra {
		updates[k] = v
	}
	if err := s.queueRepo.UpdateFields(ctx, nil, item.ID, updates); err != nil {
		return nil, err
	}
	return s.queueRepo.GetByID(ctx, nil, id)
}

// mondayOf anchors the rolling week: Monday 00:00 UTC of the given date.
func mondayOf(t time.Time) time.Time {
	day := startOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
