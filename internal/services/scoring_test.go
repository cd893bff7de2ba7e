package services

import (
	"github.com/linkforge/linkforge-backend/internal/scoringconfig"
	"github.com/linkforge/linkforge-backend/internal/types"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestDecayFactor(t *testing.T) {
	require.InDelta(t, 1.0, decayFactor(0, 90), 1e-9)
	require.InDelta(t, 0.5, decayFactor(90, 90), 1e-9)
	require.InDelta(t, 0.25, decayFactor(180, 90), 1e-9)

	// Negative elapsed time clamps to zero.
	require.InDelta(t, 1.0, decayFactor(-5, 90), 1e-9)

	// A zero half-life disables decay instead of dividing by zero.
	require.InDelta(t, 1.0, decayFactor(400, 0), 1e-9)
}

func TestReciprocityMultiplier(t *testing.T) {
	tunables := scoringconfig.Tunables{
		ReciprocityThreshold:     0.3,
		ReciprocityMultiplierMin: 1.1,
		ReciprocityMultiplierMax: 1.5,
	}

	// Below the threshold there is no bonus at all.
	require.InDelta(t, 1.0, reciprocityMultiplier(0, tunables), 1e-9)
	require.InDelta(t, 1.0, reciprocityMultiplier(0.29, tunables), 1e-9)

	// At the threshold the bonus starts at the minimum.
	require.InDelta(t, 1.1, reciprocityMultiplier(0.3, tunables), 1e-9)

	// Halfway between threshold and 1.0 lands halfway between min and max.
	require.InDelta(t, 1.3, reciprocityMultiplier(0.65, tunables), 1e-9)

	// Fully reciprocal hits the maximum.
	require.InDelta(t, 1.5, reciprocityMultiplier(1.0, tunables), 1e-9)
}

func TestRelationshipScoreZeroInteractions(t *testing.T) {
	snap := scoringconfig.DefaultSnapshot()
	require.Equal(t, 0, relationshipScore(nil, snap, time.Now()))
	require.Equal(t, 0, relationshipScore([]*types.Interaction{}, snap, time.Now()))
}

func TestRelationshipScoreDecayedMeeting(t *testing.T) {
	snap := scoringconfig.DefaultSnapshot()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// One in-person meeting exactly one half-life ago: 15 points decayed to
	// 7.5, no reciprocity bonus, normalized to 5.
	interactions := []*types.Interaction{{
		Type:       types.InteractionMeeting1on1InPerson,
		OccurredAt: now.AddDate(0, 0, -90),
	}}
	require.Equal(t, 5, relationshipScore(interactions, snap, now))

	// The same meeting today is worth double.
	interactions[0].OccurredAt = now
	require.Equal(t, 10, relationshipScore(interactions, snap, now))
}

func TestRelationshipScoreMoreRecentScoresHigher(t *testing.T) {
	snap := scoringconfig.DefaultSnapshot()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	recent := []*types.Interaction{{
		Type:       types.InteractionMessageSent,
		OccurredAt: now.AddDate(0, 0, -1),
	}}
	stale := []*types.Interaction{{
		Type:       types.InteractionMessageSent,
		OccurredAt: now.AddDate(0, 0, -300),
	}}
	require.Greater(t, relationshipScore(recent, snap, now), relationshipScore(stale, snap, now))
}

func TestRelationshipScoreClampsAt100(t *testing.T) {
	snap := scoringconfig.DefaultSnapshot()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var interactions []*types.Interaction
	for i := 0; i < 40; i++ {
		interactions = append(interactions, &types.Interaction{
			Type:       types.InteractionMeeting1on1InPerson,
			OccurredAt: now,
		})
	}
	require.Equal(t, 100, relationshipScore(interactions, snap, now))
}

func TestRelationshipScoreReciprocityBonus(t *testing.T) {
	snap := scoringconfig.DefaultSnapshot()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Two outbound messages: 6 raw points, no bonus, score 4.
	oneWay := []*types.Interaction{
		{Type: types.InteractionMessageSent, OccurredAt: now},
		{Type: types.InteractionMessageSent, OccurredAt: now},
	}
	require.Equal(t, 4, relationshipScore(oneWay, snap, now))

	// One sent, one received: 8 raw points, 50% reciprocal, multiplier
	// 1.1 + 0.4*(0.2/0.7) = 1.2143, score round(9.714/150*100) = 6.
	twoWay := []*types.Interaction{
		{Type: types.InteractionMessageSent, OccurredAt: now},
		{Type: types.InteractionMessageReceived, OccurredAt: now},
	}
	require.Equal(t, 6, relationshipScore(twoWay, snap, now))
}
