package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/linkforge/linkforge-backend/internal/repos/testutil"
	"github.com/linkforge/linkforge-backend/internal/types"
)

func TestQueueItemRepoWeeklyUsage(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewQueueItemRepo(tx, testutil.Logger(t))

	weekStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // Monday
	weekEnd := weekStart.AddDate(0, 0, 7)

	executedAt := weekStart.AddDate(0, 0, 1).Add(9 * time.Hour)
	a := testutil.SeedContact(t, ctx, tx, "A", types.StatusRequested)
	b := testutil.SeedContact(t, ctx, tx, "B", types.StatusTarget)
	c := testutil.SeedContact(t, ctx, tx, "C", types.StatusTarget)
	d := testutil.SeedContact(t, ctx, tx, "D", types.StatusTarget)
	e := testutil.SeedContact(t, ctx, tx, "E", types.StatusConnected)

	// Executed this week: counts.
	executed := testutil.SeedQueueItem(t, ctx, tx, a.ID, weekStart, types.QueueActionConnectionRequest, types.QueueStatusExecuted)
	if err := repo.UpdateFields(ctx, nil, executed.ID, map[string]interface{}{"executed_at": executedAt}); err != nil {
		t.Fatalf("set executed_at: %v", err)
	}
	// Pending and approved this week: count.
	testutil.SeedQueueItem(t, ctx, tx, b.ID, weekStart.AddDate(0, 0, 2), types.QueueActionConnectionRequest, types.QueueStatusPending)
	testutil.SeedQueueItem(t, ctx, tx, c.ID, weekStart.AddDate(0, 0, 3), types.QueueActionConnectionRequest, types.QueueStatusApproved)
	// Skipped items and other action types do not.
	testutil.SeedQueueItem(t, ctx, tx, d.ID, weekStart.AddDate(0, 0, 2), types.QueueActionConnectionRequest, types.QueueStatusSkipped)
	testutil.SeedQueueItem(t, ctx, tx, e.ID, weekStart.AddDate(0, 0, 2), types.QueueActionFollowUp, types.QueueStatusPending)

	used, err := repo.WeeklyConnectionRequestUsage(ctx, nil, weekStart, weekEnd)
	if err != nil {
		t.Fatalf("weekly usage: %v", err)
	}
	if used != 3 {
		t.Fatalf("expected weekly usage 3, got %d", used)
	}
}

func TestQueueItemRepoActiveContactSets(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewQueueItemRepo(tx, testutil.Logger(t))

	today := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	onToday := testutil.SeedContact(t, ctx, tx, "Today", types.StatusTarget)
	stale := testutil.SeedContact(t, ctx, tx, "Stale", types.StatusTarget)
	resolved := testutil.SeedContact(t, ctx, tx, "Resolved", types.StatusTarget)

	testutil.SeedQueueItem(t, ctx, tx, onToday.ID, today, types.QueueActionConnectionRequest, types.QueueStatusPending)
	testutil.SeedQueueItem(t, ctx, tx, stale.ID, yesterday, types.QueueActionConnectionRequest, types.QueueStatusApproved)
	testutil.SeedQueueItem(t, ctx, tx, resolved.ID, yesterday, types.QueueActionConnectionRequest, types.QueueStatusExecuted)

	on, err := repo.ActiveContactIDsOn(ctx, nil, today)
	if err != nil {
		t.Fatalf("active on: %v", err)
	}
	if len(on) != 1 || !on[onToday.ID] {
		t.Fatalf("expected only today's pending contact, got %v", on)
	}

	before, err := repo.ActiveContactIDsBefore(ctx, nil, today)
	if err != nil {
		t.Fatalf("active before: %v", err)
	}
	if len(before) != 1 || !before[stale.ID] {
		t.Fatalf("expected only the stale approved contact, got %v", before)
	}
}

func TestQueueItemRepoReschedule(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewQueueItemRepo(tx, testutil.Logger(t))

	today := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	contact := testutil.SeedContact(t, ctx, tx, "Carry", types.StatusTarget)
	item := testutil.SeedQueueItem(t, ctx, tx, contact.ID, yesterday, types.QueueActionConnectionRequest, types.QueueStatusPending)

	stale, err := repo.ListPendingBefore(ctx, nil, today)
	if err != nil {
		t.Fatalf("list pending before: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != item.ID {
		t.Fatalf("expected the stale item, got %d items", len(stale))
	}

	if err := repo.RescheduleToDate(ctx, nil, nil, today); err != nil {
		t.Fatalf("reschedule with no ids: %v", err)
	}

	if err := repo.RescheduleToDate(ctx, nil, []uuid.UUID{item.ID}, today); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	moved, err := repo.ListForDate(ctx, nil, today)
	if err != nil {
		t.Fatalf("list for date: %v", err)
	}
	if len(moved) != 1 || moved[0].ID != item.ID {
		t.Fatalf("expected the item on today's queue, got %d items", len(moved))
	}

	leftover, err := repo.ListPendingBefore(ctx, nil, today)
	if err != nil {
		t.Fatalf("list pending before: %v", err)
	}
	if len(leftover) != 0 {
		t.Fatalf("expected no stale items after reschedule, got %d", len(leftover))
	}
}

func TestQueueItemRepoCountByActionTypeOn(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewQueueItemRepo(tx, testutil.Logger(t))

	today := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

	a := testutil.SeedContact(t, ctx, tx, "A", types.StatusTarget)
	b := testutil.SeedContact(t, ctx, tx, "B", types.StatusTarget)
	c := testutil.SeedContact(t, ctx, tx, "C", types.StatusTarget)

	testutil.SeedQueueItem(t, ctx, tx, a.ID, today, types.QueueActionConnectionRequest, types.QueueStatusPending)
	testutil.SeedQueueItem(t, ctx, tx, b.ID, today, types.QueueActionConnectionRequest, types.QueueStatusExecuted)
	// Skipped items released their slot.
	testutil.SeedQueueItem(t, ctx, tx, c.ID, today, types.QueueActionConnectionRequest, types.QueueStatusSkipped)

	count, err := repo.CountByActionTypeOn(ctx, nil, today, types.QueueActionConnectionRequest)
	if err != nil {
		t.Fatalf("count by action type: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}
