package repos

import (
	"context"
	"testing"

	"github.com/linkforge/linkforge-backend/internal/repos/testutil"
	"github.com/linkforge/linkforge-backend/internal/types"
)

func findConfigRow(rows []*types.ScoringConfig, configType, key string) *types.ScoringConfig {
	for _, row := range rows {
		if row.ConfigType == configType && row.Key == key {
			return row
		}
	}
	return nil
}

func TestScoringConfigRepoSetValueInsertsMissingRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewScoringConfigRepo(tx, testutil.Logger(t))

	if err := repo.SetValue(ctx, nil, types.ConfigTypeRelationshipWeight, "voice_note_sent", 4); err != nil {
		t.Fatalf("set value: %v", err)
	}

	rows, err := repo.GetAll(ctx, nil)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	row := findConfigRow(rows, types.ConfigTypeRelationshipWeight, "voice_note_sent")
	if row == nil {
		t.Fatalf("expected the new row to be written")
	}
	if row.Value != 4 {
		t.Fatalf("expected value 4, got %v", row.Value)
	}
}

func TestScoringConfigRepoSetValueUpdatesExistingRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewScoringConfigRepo(tx, testutil.Logger(t))

	seed := []*types.ScoringConfig{{
		ConfigType:  types.ConfigTypeGeneral,
		Key:         types.ConfigKeyHalfLifeDays,
		Value:       90,
		Description: "decay half-life in days",
	}}
	if err := repo.SeedDefaults(ctx, nil, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := repo.SetValue(ctx, nil, types.ConfigTypeGeneral, types.ConfigKeyHalfLifeDays, 30); err != nil {
		t.Fatalf("set value: %v", err)
	}

	rows, err := repo.GetAll(ctx, nil)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	row := findConfigRow(rows, types.ConfigTypeGeneral, types.ConfigKeyHalfLifeDays)
	if row == nil {
		t.Fatalf("expected the seeded row to exist")
	}
	if row.Value != 30 {
		t.Fatalf("expected value 30 after upsert, got %v", row.Value)
	}
	if row.Description != "decay half-life in days" {
		t.Fatalf("expected the description to survive the upsert, got %q", row.Description)
	}

	count := 0
	for _, r := range rows {
		if r.ConfigType == types.ConfigTypeGeneral && r.Key == types.ConfigKeyHalfLifeDays {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one row per (config_type, key), got %d", count)
	}
}

func TestScoringConfigRepoSeedNeverClobbers(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewScoringConfigRepo(tx, testutil.Logger(t))

	if err := repo.SetValue(ctx, nil, types.ConfigTypeGeneral, types.ConfigKeyHalfLifeDays, 30); err != nil {
		t.Fatalf("set value: %v", err)
	}

	seed := []*types.ScoringConfig{{
		ConfigType: types.ConfigTypeGeneral,
		Key:        types.ConfigKeyHalfLifeDays,
		Value:      90,
	}}
	if err := repo.SeedDefaults(ctx, nil, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rows, err := repo.GetAll(ctx, nil)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	row := findConfigRow(rows, types.ConfigTypeGeneral, types.ConfigKeyHalfLifeDays)
	if row == nil || row.Value != 30 {
		t.Fatalf("expected the operator edit to survive seeding")
	}
}
