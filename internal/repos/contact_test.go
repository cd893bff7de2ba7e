package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/linkforge/linkforge-backend/internal/repos/testutil"
	"github.com/linkforge/linkforge-backend/internal/types"
)

func TestContactRepoTransitionStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewContactRepo(tx, testutil.Logger(t))
	historyRepo := NewStatusHistoryRepo(tx, testutil.Logger(t))

	contact := testutil.SeedContact(t, ctx, tx, "Ada", types.StatusConnected)

	if err := repo.TransitionStatus(ctx, nil, contact.ID, types.StatusConnected, types.StatusEngaged, types.TriggerAutomatedPromotion, "promotion criteria met"); err != nil {
		t.Fatalf("transition: %v", err)
	}

	reloaded, err := repo.GetByID(ctx, nil, contact.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if reloaded.Status != types.StatusEngaged {
		t.Fatalf("expected status %q, got %q", types.StatusEngaged, reloaded.Status)
	}

	history, err := historyRepo.GetByContactID(ctx, nil, contact.ID)
	if err != nil {
		t.Fatalf("status history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(history))
	}
	row := history[0]
	if row.FromStatus != types.StatusConnected || row.ToStatus != types.StatusEngaged {
		t.Fatalf("unexpected history row %q -> %q", row.FromStatus, row.ToStatus)
	}
	if row.Trigger != types.TriggerAutomatedPromotion {
		t.Fatalf("expected trigger %q, got %q", types.TriggerAutomatedPromotion, row.Trigger)
	}
}

func TestContactRepoListTargetsByPriority(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewContactRepo(tx, testutil.Logger(t))

	low := testutil.SeedContact(t, ctx, tx, "Low", types.StatusTarget)
	high := testutil.SeedContact(t, ctx, tx, "High", types.StatusTarget)
	mid := testutil.SeedContact(t, ctx, tx, "Mid", types.StatusTarget)
	connected := testutil.SeedContact(t, ctx, tx, "Conn", types.StatusConnected)

	setPriority := func(id uuid.UUID, score float64) {
		if err := tx.Model(&types.Contact{}).Where("id = ?", id).Update("priority_score", score).Error; err != nil {
			t.Fatalf("set priority: %v", err)
		}
	}
	setPriority(low.ID, 2.5)
	setPriority(high.ID, 9.1)
	setPriority(mid.ID, 6.4)
	setPriority(connected.ID, 9.9)

	targets, err := repo.ListTargetsByPriority(ctx, nil, 0, 0)
	if err != nil {
		t.Fatalf("list targets: %v", err)
	}
	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(targets))
	}
	if targets[0].ID != high.ID || targets[1].ID != mid.ID || targets[2].ID != low.ID {
		t.Fatalf("unexpected ordering: %s, %s, %s", targets[0].FirstName, targets[1].FirstName, targets[2].FirstName)
	}

	page, err := repo.ListTargetsByPriority(ctx, nil, 1, 1)
	if err != nil {
		t.Fatalf("list targets page: %v", err)
	}
	if len(page) != 1 || page[0].ID != mid.ID {
		t.Fatalf("expected the middle target on page 2, got %d rows", len(page))
	}
}

func TestContactRepoLookupsReturnNilWhenMissing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewContactRepo(tx, testutil.Logger(t))

	byURL, err := repo.GetByLinkedinURL(ctx, nil, "https://linkedin.com/in/nobody")
	if err != nil {
		t.Fatalf("get by url: %v", err)
	}
	if byURL != nil {
		t.Fatalf("expected nil for missing url, got %+v", byURL)
	}

	byEmail, err := repo.GetByEmail(ctx, nil, "nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail != nil {
		t.Fatalf("expected nil for missing email, got %+v", byEmail)
	}
}

func TestContactRepoSoftDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewContactRepo(tx, testutil.Logger(t))

	contact := testutil.SeedContact(t, ctx, tx, "Gone", types.StatusConnected)
	if err := repo.SoftDeleteByID(ctx, nil, contact.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	reloaded, err := repo.GetByID(ctx, nil, contact.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if reloaded != nil {
		t.Fatalf("expected deleted contact to be invisible, got %+v", reloaded)
	}

	count, err := repo.CountByStatus(ctx, nil, types.StatusConnected)
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected soft-deleted contact excluded from counts, got %d", count)
	}
}
