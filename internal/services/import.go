package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"io"
	"strings"
	"time"
)

// ImportKind selects the initial lifecycle status for imported rows.
// A connections export means the relationship already exists; a prospect
// list starts at target.
const (
	ImportKindConnections = "connections"
	ImportKindTargets     = "targets"
)

type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

type ImportService interface {
	ImportCSV(ctx context.Context, reader io.Reader, kind string) (*ImportResult, error)
}

type importService struct {
	db              *gorm.DB
	log             *logger.Logger
	contactRepo     repos.ContactRepo
	interactionRepo repos.InteractionRepo
}

func NewImportService(db *gorm.DB, baseLog *logger.Logger, contactRepo repos.ContactRepo, interactionRepo repos.InteractionRepo) ImportService {
	return &importService{
		db:              db,
		log:             baseLog.With("service", "ImportService"),
		contactRepo:     contactRepo,
		interactionRepo: interactionRepo,
	}
}

// ImportCSV ingests a LinkedIn connections export (First Name, Last Name,
// URL, Email Address, Company, Position, Connected On). Header names are
// matched case-insensitively so minor export format drift doesn't break the
// import. Rows matching an existing contact by URL or email are skipped.
func (s *importService) ImportCSV(ctx context.Context, reader io.Reader, kind string) (*ImportResult, error) {
	if kind != ImportKindConnections && kind != ImportKindTargets {
		return nil, fmt.Errorf("unknown import kind %q", kind)
	}

	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	result := &ImportResult{}
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if err := s.importRow(ctx, columns, record, kind, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
		}
	}

	s.log.Info("CSV import finished", "kind", kind, "created", result.Created, "skipped", result.Skipped, "errors", len(result.Errors))
	return result, nil
}

func (s *importService) importRow(ctx context.Context, columns map[string]int, record []string, kind string, result *ImportResult) error {
	field := func(names ...string) string {
		for _, name := range names {
			if idx, ok := columns[name]; ok && idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
		}
		return ""
	}

	firstName := field("first name")
	lastName := field("last name")
	linkedinURL := field("url", "profile url")
	email := field("email address", "email")
	if firstName == "" && lastName == "" && linkedinURL == "" {
		result.Skipped++
		return nil
	}

	if linkedinURL != "" {
		existing, err := s.contactRepo.GetByLinkedinURL(ctx, nil, linkedinURL)
		if err != nil {
			return err
		}
		if existing != nil {
			result.Skipped++
			return nil
		}
	}
	if email != "" {
		existing, err := s.contactRepo.GetByEmail(ctx, nil, email)
		if err != nil {
			return err
		}
		if existing != nil {
			result.Skipped++
			return nil
		}
	}

	status := types.StatusTarget
	if kind == ImportKindConnections {
		status = types.StatusConnected
	}

	raw := map[string]string{}
	for name, idx := range columns {
		if idx < len(record) && record[idx] != "" {
			raw[name] = record[idx]
		}
	}
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	contact := &types.Contact{
		ID:          uuid.New(),
		FirstName:   firstName,
		LastName:    lastName,
		Company:     field("company"),
		Title:       field("position", "title"),
		Email:       email,
		LinkedinURL: linkedinURL,
		Status:      status,
		RawProfile:  datatypes.JSON(rawJSON),
	}
	if _, err := s.contactRepo.Create(ctx, nil, []*types.Contact{contact}); err != nil {
		return err
	}

	// A connections export tells us when they accepted; log it so scoring and
	// the reciprocal-interaction guard see the accepted request.
	if kind == ImportKindConnections {
		occurredAt := parseConnectedOn(field("connected on"))
		if _, err := s.interactionRepo.Create(ctx, nil, []*types.Interaction{{
			ContactID:  contact.ID,
			Type:       types.InteractionConnectionRequestAccepted,
			OccurredAt: occurredAt,
			Source:     "import",
		}}); err != nil {
			return err
		}
	}

	result.Created++
	return nil
}

func parseConnectedOn(value string) time.Time {
	// LinkedIn exports use "02 Jan 2006"; older ones "1/2/06".
	for _, layout := range []string{"02 Jan 2006", "1/2/06", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Now()
}
