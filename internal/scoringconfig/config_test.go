package scoringconfig

import (
	"github.com/linkforge/linkforge-backend/internal/types"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestDefaultSnapshot(t *testing.T) {
	snap := DefaultSnapshot()

	require.InDelta(t, 15.0, snap.RelationshipWeight(types.InteractionMeeting1on1InPerson), 1e-9)
	require.InDelta(t, 5.0, snap.RelationshipWeight(types.InteractionMessageReceived), 1e-9)
	// Unknown interaction types score zero rather than erroring.
	require.InDelta(t, 0.0, snap.RelationshipWeight("carrier_pigeon"), 1e-9)

	require.InDelta(t, 0.5, snap.PriorityWeight(types.ConfigKeyPriorityRelevance, 0), 1e-9)
	require.InDelta(t, 0.3, snap.PriorityWeight(types.ConfigKeyPriorityAccessibility, 0), 1e-9)
	require.InDelta(t, 0.2, snap.PriorityWeight(types.ConfigKeyPriorityTiming, 0), 1e-9)
	// Missing dimensions fall back to the caller's default.
	require.InDelta(t, 0.9, snap.PriorityWeight("serendipity", 0.9), 1e-9)

	require.InDelta(t, 90.0, snap.Tunables.HalfLifeDays, 1e-9)
	require.InDelta(t, 0.3, snap.Tunables.ReciprocityThreshold, 1e-9)
	require.InDelta(t, 1.1, snap.Tunables.ReciprocityMultiplierMin, 1e-9)
	require.InDelta(t, 1.5, snap.Tunables.ReciprocityMultiplierMax, 1e-9)

	require.InDelta(t, 1.5, snap.SeniorityMultiplier(types.SeniorityCSuite), 1e-9)
	require.InDelta(t, 0.8, snap.SeniorityMultiplier(types.SeniorityIC), 1e-9)
	// Unknown seniority levels are neutral.
	require.InDelta(t, 1.0, snap.SeniorityMultiplier("intern"), 1e-9)
}

func TestSeedRowsCoverEveryDefault(t *testing.T) {
	rows, err := SeedRows()
	require.NoError(t, err)

	byType := map[string]int{}
	for _, row := range rows {
		byType[row.ConfigType]++
	}
	require.Equal(t, 14, byType[types.ConfigTypeRelationshipWeight])
	require.Equal(t, 3, byType[types.ConfigTypePriorityWeight])
	require.Equal(t, 9, byType[types.ConfigTypeGeneral])
}

func TestSnapshotOverlay(t *testing.T) {
	snap := DefaultSnapshot()
	snap.applyGeneral(types.ConfigKeyHalfLifeDays, 30)
	require.InDelta(t, 30.0, snap.Tunables.HalfLifeDays, 1e-9)

	snap.applyGeneral(types.ConfigKeySeniorityVP, 2.0)
	require.InDelta(t, 2.0, snap.SeniorityMultiplier(types.SeniorityVP), 1e-9)

	// Unknown general keys are ignored.
	snap.applyGeneral("gravity", 9.8)
}
