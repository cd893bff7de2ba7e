package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkforge/linkforge-backend/internal/types"
)

func SeedContact(tb testing.TB, ctx context.Context, tx *gorm.DB, firstName, status string) *types.Contact {
	tb.Helper()
	c := &types.Contact{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  "Test",
		Status:    status,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contact: %v", err)
	}
	return c
}

func SeedInteraction(tb testing.TB, ctx context.Context, tx *gorm.DB, contactID uuid.UUID, interactionType string, occurredAt time.Time) *types.Interaction {
	tb.Helper()
	i := &types.Interaction{
		ID:         uuid.New(),
		ContactID:  contactID,
		Type:       interactionType,
		OccurredAt: occurredAt,
		Source:     "manual",
	}
	if err := tx.WithContext(ctx).Create(i).Error; err != nil {
		tb.Fatalf("seed interaction: %v", err)
	}
	return i
}

func SeedScoreHistory(tb testing.TB, ctx context.Context, tx *gorm.DB, contactID uuid.UUID, scoreType string, value float64, recordedAt time.Time) *types.ScoreHistory {
	tb.Helper()
	h := &types.ScoreHistory{
		ID:         uuid.New(),
		ContactID:  contactID,
		ScoreType:  scoreType,
		ScoreValue: value,
		RecordedAt: recordedAt,
	}
	if err := tx.WithContext(ctx).Create(h).Error; err != nil {
		tb.Fatalf("seed score history: %v", err)
	}
	return h
}

func SeedStatusHistory(tb testing.TB, ctx context.Context, tx *gorm.DB, contactID uuid.UUID, fromStatus, toStatus string, createdAt time.Time) *types.StatusHistory {
	tb.Helper()
	h := &types.StatusHistory{
		ID:         uuid.New(),
		ContactID:  contactID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Trigger:    types.TriggerManual,
		CreatedAt:  createdAt,
	}
	if err := tx.WithContext(ctx).Create(h).Error; err != nil {
		tb.Fatalf("seed status history: %v", err)
	}
	return h
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, weight int) *types.Category {
	tb.Helper()
	c := &types.Category{
		ID:              uuid.New(),
		Name:            name,
		RelevanceWeight: weight,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, name, body string, categoryID *uuid.UUID) *types.MessageTemplate {
	tb.Helper()
	m := &types.MessageTemplate{
		ID:         uuid.New(),
		Name:       name,
		Body:       body,
		IsActive:   true,
		CategoryID: categoryID,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return m
}

func SeedQueueItem(tb testing.TB, ctx context.Context, tx *gorm.DB, contactID uuid.UUID, queueDate time.Time, actionType, status string) *types.QueueItem {
	tb.Helper()
	q := &types.QueueItem{
		ID:         uuid.New(),
		ContactID:  contactID,
		QueueDate:  queueDate,
		ActionType: actionType,
		Status:     status,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed queue item: %v", err)
	}
	return q
}
