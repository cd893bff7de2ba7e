package services

import (
	"context"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/repos/testutil"
	"github.com/linkforge/linkforge-backend/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"strings"
	"testing"
)

const connectionsCSV = `First Name,Last Name,URL,Email Address,Company,Position,Connected On
Ada,Lovelace,https://www.linkedin.com/in/ada,ada@example.com,Analytical Engines,Chief Engineer,12 Mar 2025
Grace,Hopper,https://www.linkedin.com/in/grace,,Navy,Rear Admiral,01 Jan 2025
`

func newImportService(t *testing.T, tx *gorm.DB) ImportService {
	t.Helper()
	log := testutil.Logger(t)
	return NewImportService(tx, log, repos.NewContactRepo(tx, log), repos.NewInteractionRepo(tx, log))
}

func TestImportCSVConnections(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newImportService(t, tx)

	result, err := svc.ImportCSV(ctx, strings.NewReader(connectionsCSV), ImportKindConnections)
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)
	require.Equal(t, 0, result.Skipped)
	require.Empty(t, result.Errors)

	log := testutil.Logger(t)
	contactRepo := repos.NewContactRepo(tx, log)
	ada, err := contactRepo.GetByLinkedinURL(ctx, nil, "https://www.linkedin.com/in/ada")
	require.NoError(t, err)
	require.NotNil(t, ada)
	require.Equal(t, "Ada", ada.FirstName)
	require.Equal(t, "Chief Engineer", ada.Title)
	require.Equal(t, types.StatusConnected, ada.Status)

	// The accepted request lands on the interaction log with the export date.
	interactions, err := repos.NewInteractionRepo(tx, log).GetByContactID(ctx, nil, ada.ID)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	require.Equal(t, types.InteractionConnectionRequestAccepted, interactions[0].Type)
	require.Equal(t, "import", interactions[0].Source)
	require.Equal(t, "2025-03-12", interactions[0].OccurredAt.UTC().Format("2006-01-02"))
}

func TestImportCSVDedupes(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newImportService(t, tx)

	first, err := svc.ImportCSV(ctx, strings.NewReader(connectionsCSV), ImportKindConnections)
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)

	// Importing the same file again creates nothing.
	second, err := svc.ImportCSV(ctx, strings.NewReader(connectionsCSV), ImportKindConnections)
	require.NoError(t, err)
	require.Equal(t, 0, second.Created)
	require.Equal(t, 2, second.Skipped)
}

func TestImportCSVTargetsStartAsTarget(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newImportService(t, tx)

	csvData := "First Name,Last Name,URL\nAlan,Turing,https://www.linkedin.com/in/alan\n"
	result, err := svc.ImportCSV(ctx, strings.NewReader(csvData), ImportKindTargets)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)

	log := testutil.Logger(t)
	alan, err := repos.NewContactRepo(tx, log).GetByLinkedinURL(ctx, nil, "https://www.linkedin.com/in/alan")
	require.NoError(t, err)
	require.NotNil(t, alan)
	require.Equal(t, types.StatusTarget, alan.Status)

	// Target imports carry no implicit interaction.
	interactions, err := repos.NewInteractionRepo(tx, log).GetByContactID(ctx, nil, alan.ID)
	require.NoError(t, err)
	require.Empty(t, interactions)
}

func TestImportCSVRejectsUnknownKind(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	svc := newImportService(t, tx)

	_, err := svc.ImportCSV(context.Background(), strings.NewReader(connectionsCSV), "prospects")
	require.Error(t, err)
}
