package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/types"
	"net/http"
)

type TemplateHandler struct {
	templateRepo repos.TemplateRepo
}

func NewTemplateHandler(templateRepo repos.TemplateRepo) *TemplateHandler {
	return &TemplateHandler{templateRepo: templateRepo}
}

func (th *TemplateHandler) Create(c *gin.Context) {
	var req struct {
		Name       string  `json:"name"`
		Body       string  `json:"body"`
		CategoryID *string `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and body are required"})
		return
	}
	template := &types.MessageTemplate{
		ID:       uuid.New(),
		Name:     req.Name,
		Body:     req.Body,
		IsActive: true,
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		template.CategoryID = &categoryID
	}
	if _, err := th.templateRepo.Create(c.Request.Context(), nil, []*types.MessageTemplate{template}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": template})
}

func (th *TemplateHandler) List(c *gin.Context) {
	templates, err := th.templateRepo.ListActive(c.Request.Context(), nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates, "count": len(templates)})
}

func (th *TemplateHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	updates := map[string]interface{}{}
	for _, field := range []string{"name", "body", "is_active"} {
		if v, ok := req[field]; ok {
			updates[field] = v
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no updatable fields in request"})
		return
	}
	existing, err := th.templateRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	if err := th.templateRepo.UpdateFields(c.Request.Context(), nil, id, updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	updated, err := th.templateRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": updated})
}
