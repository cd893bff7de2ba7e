package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/types"
	"net/http"
)

type CategoryHandler struct {
	categoryRepo repos.CategoryRepo
}

func NewCategoryHandler(categoryRepo repos.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{categoryRepo: categoryRepo}
}

func (ch *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		RelevanceWeight int    `json:"relevance_weight"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if req.RelevanceWeight < 1 || req.RelevanceWeight > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "relevance_weight must be between 1 and 10"})
		return
	}
	existing, err := ch.categoryRepo.GetByName(c.Request.Context(), nil, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "category with this name already exists"})
		return
	}
	category := &types.Category{
		ID:              uuid.New(),
		Name:            req.Name,
		Description:     req.Description,
		RelevanceWeight: req.RelevanceWeight,
	}
	if _, err := ch.categoryRepo.Create(c.Request.Context(), nil, []*types.Category{category}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (ch *CategoryHandler) List(c *gin.Context) {
	categories, err := ch.categoryRepo.List(c.Request.Context(), nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}
