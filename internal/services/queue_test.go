package services

import (
	"context"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/repos/testutil"
	"github.com/linkforge/linkforge-backend/internal/scoringconfig"
	"github.com/linkforge/linkforge-backend/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"strings"
	"testing"
	"time"
)

func TestMondayOf(t *testing.T) {
	// Wednesday 2025-06-04 anchors to Monday 2025-06-02.
	wednesday := time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), mondayOf(wednesday))

	// A Monday anchors to itself.
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), mondayOf(monday))

	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2025, 6, 8, 23, 59, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), mondayOf(sunday))
}

func TestStartOfDay(t *testing.T) {
	late := time.Date(2025, 6, 4, 23, 59, 59, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), startOfDay(late))
}

func newQueueService(t *testing.T, tx *gorm.DB) QueueService {
	t.Helper()
	log := testutil.Logger(t)
	configLoader := scoringconfig.NewLoader(repos.NewScoringConfigRepo(tx, log), log)
	return NewQueueService(
		tx,
		log,
		repos.NewQueueItemRepo(tx, log),
		repos.NewContactRepo(tx, log),
		repos.NewInteractionRepo(tx, log),
		repos.NewScoreHistoryRepo(tx, log),
		repos.NewStatusHistoryRepo(tx, log),
		repos.NewTemplateRepo(tx, log),
		configLoader,
		nil,
		nil,
		0,
	)
}

func seedTarget(t *testing.T, ctx context.Context, tx *gorm.DB, name string, priority float64) *types.Contact {
	t.Helper()
	contact := testutil.SeedContact(t, ctx, tx, name, types.StatusTarget)
	require.NoError(t, tx.WithContext(ctx).Model(&types.Contact{}).
		Where("id = ?", contact.ID).
		Update("priority_score", priority).Error)
	contact.PriorityScore = priority
	return contact
}

func TestGenerateDailyQueueTopTargets(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newQueueService(t, tx)

	queueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	testutil.SeedTemplate(t, ctx, tx, "intro", "Hi {first_name}", nil)

	seedTarget(t, ctx, tx, "Low", 2.0)
	high := seedTarget(t, ctx, tx, "High", 9.0)
	mid := seedTarget(t, ctx, tx, "Mid", 5.0)

	result, err := svc.GenerateDailyQueue(ctx, QueueOptions{QueueDate: queueDate, MaxNewRequests: 2})
	require.NoError(t, err)
	require.Equal(t, 2, result.ConnectionRequests)
	require.Equal(t, 2, result.Total)

	items, err := svc.ListForDate(ctx, queueDate)
	require.NoError(t, err)
	require.Len(t, items, 2)
	picked := map[string]bool{}
	for _, item := range items {
		picked[item.ContactID.String()] = true
		require.Equal(t, types.QueueActionConnectionRequest, item.ActionType)
		require.Equal(t, types.QueueStatusPending, item.Status)
	}
	require.True(t, picked[high.ID.String()])
	require.True(t, picked[mid.ID.String()])
}

func TestGenerateDailyQueueIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newQueueService(t, tx)

	queueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	testutil.SeedTemplate(t, ctx, tx, "intro", "Hi {first_name}", nil)
	for i, name := range []string{"A", "B", "C", "D"} {
		seedTarget(t, ctx, tx, name, float64(10-i))
	}

	first, err := svc.GenerateDailyQueue(ctx, QueueOptions{QueueDate: queueDate, MaxNewRequests: 3})
	require.NoError(t, err)
	require.Equal(t, 3, first.ConnectionRequests)

	// Re-running the same day adds nothing: the day budget is already spent.
	second, err := svc.GenerateDailyQueue(ctx, QueueOptions{QueueDate: queueDate, MaxNewRequests: 3})
	require.NoError(t, err)
	require.Equal(t, 0, second.ConnectionRequests)
	require.Equal(t, 0, second.Total)

	items, err := svc.ListForDate(ctx, queueDate)
	require.NoError(t, err)
	require.Len(t, items, 3)
}

func TestGenerateDailyQueueWeeklyCap(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newQueueService(t, tx)

	queueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC) // Wednesday
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	// Three requests already queued this week exhaust a weekly limit of 3.
	for _, name := range []string{"A", "B", "C"} {
		c := testutil.SeedContact(t, ctx, tx, name, types.StatusRequested)
		testutil.SeedQueueItem(t, ctx, tx, c.ID, monday, types.QueueActionConnectionRequest, types.QueueStatusApproved)
	}
	seedTarget(t, ctx, tx, "Fresh", 9.0)

	result, err := svc.GenerateDailyQueue(ctx, QueueOptions{QueueDate: queueDate, MaxNewRequests: 5, WeeklyLimit: 3})
	require.NoError(t, err)
	require.Equal(t, 0, result.Total)

	items, err := svc.ListForDate(ctx, queueDate)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestGenerateDailyQueueCarryOver(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newQueueService(t, tx)

	queueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	yesterday := queueDate.AddDate(0, 0, -1)
	testutil.SeedTemplate(t, ctx, tx, "intro", "Hi {first_name}", nil)

	stale := testutil.SeedContact(t, ctx, tx, "Stale", types.StatusTarget)
	testutil.SeedQueueItem(t, ctx, tx, stale.ID, yesterday, types.QueueActionConnectionRequest, types.QueueStatusPending)
	seedTarget(t, ctx, tx, "Fresh", 9.0)

	result, err := svc.GenerateDailyQueue(ctx, QueueOptions{QueueDate: queueDate, MaxNewRequests: 2})
	require.NoError(t, err)
	require.Equal(t, 1, result.CarriedOver)
	// The carried item consumes a slot, leaving room for one new request.
	require.Equal(t, 1, result.ConnectionRequests)
	require.Equal(t, 2, result.Total)

	items, err := svc.ListForDate(ctx, queueDate)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		require.Equal(t, "2025-06-04", item.QueueDate.UTC().Format("2006-01-02"))
	}
}

func TestGenerateDailyQueueFlagsLongMessages(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newQueueService(t, tx)

	queueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	longBody := strings.Repeat("x", 320)
	testutil.SeedTemplate(t, ctx, tx, "verbose", longBody, nil)
	seedTarget(t, ctx, tx, "Target", 5.0)

	result, err := svc.GenerateDailyQueue(ctx, QueueOptions{QueueDate: queueDate, MaxNewRequests: 1})
	require.NoError(t, err)
	require.Equal(t, 1, result.ConnectionRequests)
	require.Equal(t, 1, result.FlaggedForEditing)

	items, err := svc.ListForDate(ctx, queueDate)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Contains(t, items[0].Notes, "EXCEEDS_300_CHARS")
	// Flagged, not dropped.
	require.Equal(t, types.QueueStatusPending, items[0].Status)
}

func TestGenerateDailyQueueFollowUps(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newQueueService(t, tx)

	queueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

	// Connected two days ago, never messaged: queued for follow-up.
	quiet := testutil.SeedContact(t, ctx, tx, "Quiet", types.StatusConnected)
	testutil.SeedStatusHistory(t, ctx, tx, quiet.ID, types.StatusRequested, types.StatusConnected, queueDate.AddDate(0, 0, -2))

	// Connected two days ago but already messaged afterwards: not queued.
	chatty := testutil.SeedContact(t, ctx, tx, "Chatty", types.StatusConnected)
	testutil.SeedStatusHistory(t, ctx, tx, chatty.ID, types.StatusRequested, types.StatusConnected, queueDate.AddDate(0, 0, -2))
	testutil.SeedInteraction(t, ctx, tx, chatty.ID, types.InteractionMessageSent, queueDate.AddDate(0, 0, -1))

	// Connected long ago: outside the window.
	old := testutil.SeedContact(t, ctx, tx, "Old", types.StatusConnected)
	testutil.SeedStatusHistory(t, ctx, tx, old.ID, types.StatusRequested, types.StatusConnected, queueDate.AddDate(0, 0, -20))

	result, err := svc.GenerateDailyQueue(ctx, QueueOptions{QueueDate: queueDate})
	require.NoError(t, err)
	require.Equal(t, 1, result.FollowUps)

	items, err := svc.ListForDate(ctx, queueDate)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, quiet.ID, items[0].ContactID)
	require.Equal(t, types.QueueActionFollowUp, items[0].ActionType)
}

func TestGenerateDailyQueueReEngagements(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newQueueService(t, tx)

	queueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

	// Engaged contact whose score slid from 60 to 40: drop of 20 > 15.
	sliding := testutil.SeedContact(t, ctx, tx, "Sliding", types.StatusEngaged)
	require.NoError(t, tx.WithContext(ctx).Model(&types.Contact{}).
		Where("id = ?", sliding.ID).
		Update("relationship_score", 40).Error)
	testutil.SeedScoreHistory(t, ctx, tx, sliding.ID, types.ScoreTypeRelationship, 60, queueDate.AddDate(0, 0, -25))

	// Stable contact: drop of 5 is under the threshold.
	stable := testutil.SeedContact(t, ctx, tx, "Stable", types.StatusEngaged)
	require.NoError(t, tx.WithContext(ctx).Model(&types.Contact{}).
		Where("id = ?", stable.ID).
		Update("relationship_score", 55).Error)
	testutil.SeedScoreHistory(t, ctx, tx, stable.ID, types.ScoreTypeRelationship, 60, queueDate.AddDate(0, 0, -25))

	result, err := svc.GenerateDailyQueue(ctx, QueueOptions{QueueDate: queueDate})
	require.NoError(t, err)
	require.Equal(t, 1, result.ReEngagements)

	items, err := svc.ListForDate(ctx, queueDate)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, sliding.ID, items[0].ContactID)
	require.Equal(t, types.QueueActionReEngagement, items[0].ActionType)
}

func TestExecuteItemConnectionRequest(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newQueueService(t, tx)

	queueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	now := queueDate.Add(10 * time.Hour)
	target := seedTarget(t, ctx, tx, "Target", 5.0)
	item := testutil.SeedQueueItem(t, ctx, tx, target.ID, queueDate, types.QueueActionConnectionRequest, types.QueueStatusPending)

	executed, err := svc.ExecuteItem(ctx, item.ID, now)
	require.NoError(t, err)
	require.NotNil(t, executed)
	require.Equal(t, types.QueueStatusExecuted, executed.Status)
	require.NotNil(t, executed.ExecutedAt)

	// The outbound interaction is on the log.
	log := testutil.Logger(t)
	interactions, err := repos.NewInteractionRepo(tx, log).GetByContactID(ctx, nil, target.ID)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	require.Equal(t, types.InteractionConnectionRequestSent, interactions[0].Type)
	require.Equal(t, "automation", interactions[0].Source)

	// Executing a connection request moves the target to requested.
	contact, err := repos.NewContactRepo(tx, log).GetByID(ctx, nil, target.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusRequested, contact.Status)
}

func TestExecuteItemRejectsResolved(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newQueueService(t, tx)

	queueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	contact := testutil.SeedContact(t, ctx, tx, "Done", types.StatusRequested)
	item := testutil.SeedQueueItem(t, ctx, tx, contact.ID, queueDate, types.QueueActionConnectionRequest, types.QueueStatusSkipped)

	_, err := svc.ExecuteItem(ctx, item.ID, time.Now().UTC())
	require.Error(t, err)
}

func TestSkipAndSnooze(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newQueueService(t, tx)

	queueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	contact := testutil.SeedContact(t, ctx, tx, "A", types.StatusTarget)
	item := testutil.SeedQueueItem(t, ctx, tx, contact.ID, queueDate, types.QueueActionConnectionRequest, types.QueueStatusPending)

	snoozed, err := svc.SnoozeItem(ctx, item.ID, queueDate.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Equal(t, types.QueueStatusSnoozed, snoozed.Status)
	require.NotNil(t, snoozed.SnoozeUntil)

	// A snoozed item is resolved; it cannot be skipped afterwards.
	_, err = svc.SkipItem(ctx, item.ID)
	require.Error(t, err)
}
