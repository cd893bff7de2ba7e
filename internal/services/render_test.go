package services

import (
	"github.com/linkforge/linkforge-backend/internal/types"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	contact := &types.Contact{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Company:   "Analytical Engines",
		Title:     "Chief Engineer",
	}

	rendered := renderTemplate("Hi {first_name}, impressive work at {company}!", contact)
	require.Equal(t, "Hi Ada, impressive work at Analytical Engines!", rendered)
}

func TestRenderTemplateEmptyTokens(t *testing.T) {
	contact := &types.Contact{FirstName: "Ada"}

	// Unpopulated tokens vanish along with one adjacent space.
	rendered := renderTemplate("Hi {first_name}, {mutual_connection} suggested we connect", contact)
	require.Equal(t, "Hi Ada, suggested we connect", rendered)
	require.NotContains(t, rendered, "  ")
}

func TestRenderTemplateKeepsAuthoredSpacing(t *testing.T) {
	contact := &types.Contact{FirstName: "Ada"}

	rendered := renderTemplate("Hi {first_name},{custom}\n\nBest,\n    The Team", contact)
	require.Equal(t, "Hi Ada,\n\nBest,\n    The Team", rendered)
}

func TestExceedsCharLimit(t *testing.T) {
	require.False(t, exceedsCharLimit(strings.Repeat("a", 300)))
	require.True(t, exceedsCharLimit(strings.Repeat("a", 301)))
}

func TestExceedsCharLimitCountsRunes(t *testing.T) {
	// 151 two-byte runes: 302 bytes but well under the 300-character limit.
	require.False(t, exceedsCharLimit(strings.Repeat("é", 151)))
	require.True(t, exceedsCharLimit(strings.Repeat("é", 301)))
}
