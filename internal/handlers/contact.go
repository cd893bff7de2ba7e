package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/services"
	"github.com/linkforge/linkforge-backend/internal/types"
	"net/http"
	"strconv"
	"time"
)

type ContactHandler struct {
	contactRepo       repos.ContactRepo
	interactionRepo   repos.InteractionRepo
	scoreHistoryRepo  repos.ScoreHistoryRepo
	statusHistoryRepo repos.StatusHistoryRepo
	categoryRepo      repos.CategoryRepo
	statusService     services.StatusService
}

func NewContactHandler(
	contactRepo repos.ContactRepo,
	interactionRepo repos.InteractionRepo,
	scoreHistoryRepo repos.ScoreHistoryRepo,
	statusHistoryRepo repos.StatusHistoryRepo,
	categoryRepo repos.CategoryRepo,
	statusService services.StatusService,
) *ContactHandler {
	return &ContactHandler{
		contactRepo:       contactRepo,
		interactionRepo:   interactionRepo,
		scoreHistoryRepo:  scoreHistoryRepo,
		statusHistoryRepo: statusHistoryRepo,
		categoryRepo:      categoryRepo,
		statusService:     statusService,
	}
}

func (ch *ContactHandler) Create(c *gin.Context) {
	var req struct {
		FirstName          string   `json:"first_name"`
		LastName           string   `json:"last_name"`
		Company            string   `json:"company"`
		Title              string   `json:"title"`
		Email              string   `json:"email"`
		LinkedinURL        string   `json:"linkedin_url"`
		Location           string   `json:"location"`
		SeniorityLevel     string   `json:"seniority_level"`
		MutualConnections  int      `json:"mutual_connections"`
		ActiveOnPlatform   bool     `json:"active_on_platform"`
		IntroductionSource string   `json:"introduction_source"`
		Notes              string   `json:"notes"`
		CategoryIDs        []string `json:"category_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.FirstName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "first_name is required"})
		return
	}
	if req.LinkedinURL != "" {
		existing, err := ch.contactRepo.GetByLinkedinURL(c.Request.Context(), nil, req.LinkedinURL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "contact with this linkedin_url already exists"})
			return
		}
	}
	contact := &types.Contact{
		ID:                 uuid.New(),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Company:            req.Company,
		Title:              req.Title,
		Email:              req.Email,
		LinkedinURL:        req.LinkedinURL,
		Location:           req.Location,
		SeniorityLevel:     req.SeniorityLevel,
		Status:             types.StatusTarget,
		MutualConnections:  req.MutualConnections,
		ActiveOnPlatform:   req.ActiveOnPlatform,
		IntroductionSource: req.IntroductionSource,
		Notes:              req.Notes,
	}
	if _, err := ch.contactRepo.Create(c.Request.Context(), nil, []*types.Contact{contact}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ids := parseUUIDs(req.CategoryIDs); len(ids) > 0 {
		if err := ch.categoryRepo.AssignToContact(c.Request.Context(), nil, contact.ID, ids); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	created, err := ch.contactRepo.GetByID(c.Request.Context(), nil, contact.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contact": created})
}

func (ch *ContactHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	contact, err := ch.contactRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if contact == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

func (ch *ContactHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	status := c.Query("status")
	var (
		contacts []*types.Contact
		err      error
	)
	if status != "" {
		if !types.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		contacts, err = ch.contactRepo.ListByStatus(c.Request.Context(), nil, status, limit, offset)
	} else {
		contacts, err = ch.contactRepo.ListPage(c.Request.Context(), nil, limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts, "count": len(contacts)})
}

func (ch *ContactHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	updates := map[string]interface{}{}
	for _, field := range []string{
		"first_name", "last_name", "company", "title", "email", "linkedin_url",
		"location", "seniority_level", "mutual_connections", "active_on_platform",
		"introduction_source", "notes",
	} {
		if v, ok := req[field]; ok {
			updates[field] = v
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no updatable fields in request"})
		return
	}
	contact, err := ch.contactRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if contact == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}
	if err := ch.contactRepo.UpdateFields(c.Request.Context(), nil, id, updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	updated, err := ch.contactRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contact": updated})
}

func (ch *ContactHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	if err := ch.contactRepo.SoftDeleteByID(c.Request.Context(), nil, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (ch *ContactHandler) AssignCategories(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	var req struct {
		CategoryIDs []string `json:"category_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ids := parseUUIDs(req.CategoryIDs)
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_ids is required"})
		return
	}
	contact, err := ch.contactRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if contact == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}
	if err := ch.categoryRepo.AssignToContact(c.Request.Context(), nil, id, ids); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

// LogInteraction appends a manual interaction event. Interactions are
// append-only; there is no update or delete endpoint.
func (ch *ContactHandler) LogInteraction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	var req struct {
		Type       string     `json:"type"`
		OccurredAt *time.Time `json:"occurred_at"`
		Notes      string     `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !types.ValidInteractionType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interaction type"})
		return
	}
	contact, err := ch.contactRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if contact == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}
	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}
	interaction := &types.Interaction{
		ID:         uuid.New(),
		ContactID:  id,
		Type:       req.Type,
		OccurredAt: occurredAt,
		Source:     "manual",
		Notes:      req.Notes,
	}
	if _, err := ch.interactionRepo.Create(c.Request.Context(), nil, []*types.Interaction{interaction}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"interaction": interaction})
}

func (ch *ContactHandler) ListInteractions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	interactions, err := ch.interactionRepo.GetByContactID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"interactions": interactions, "count": len(interactions)})
}

// ScoreHistory returns the relationship score snapshots for trend display.
func (ch *ContactHandler) ScoreHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	days := queryInt(c, "days", 90)
	since := time.Now().UTC().AddDate(0, 0, -days)
	scoreType := c.DefaultQuery("type", types.ScoreTypeRelationship)
	history, err := ch.scoreHistoryRepo.ListSince(c.Request.Context(), nil, id, scoreType, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history, "count": len(history)})
}

func (ch *ContactHandler) StatusHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	records, err := ch.statusHistoryRepo.GetByContactID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records, "count": len(records)})
}

// TransitionStatus handles a manual lifecycle move. Manual moves bypass the
// promotion and demotion guards.
func (ch *ContactHandler) TransitionStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	transition, err := ch.statusService.ManualTransition(c.Request.Context(), id, req.Status, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if transition == nil {
		c.JSON(http.StatusOK, gin.H{"transition": nil, "changed": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transition": transition, "changed": true})
}

// CheckStatus runs the automated promotion then demotion guards for one
// contact and reports what, if anything, changed.
func (ch *ContactHandler) CheckStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	now := time.Now().UTC()
	promotion, err := ch.statusService.CheckPromotion(c.Request.Context(), id, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if promotion != nil {
		c.JSON(http.StatusOK, gin.H{"transition": promotion, "changed": true})
		return
	}
	demotion, err := ch.statusService.CheckDemotion(c.Request.Context(), id, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if demotion != nil {
		c.JSON(http.StatusOK, gin.H{"transition": demotion, "changed": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transition": nil, "changed": false})
}

func parseUUIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
