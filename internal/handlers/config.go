package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/scoringconfig"
	"github.com/linkforge/linkforge-backend/internal/types"
	"net/http"
)

type ConfigHandler struct {
	configRepo   repos.ScoringConfigRepo
	configLoader *scoringconfig.Loader
}

func NewConfigHandler(configRepo repos.ScoringConfigRepo, configLoader *scoringconfig.Loader) *ConfigHandler {
	return &ConfigHandler{configRepo: configRepo, configLoader: configLoader}
}

// Get returns the effective snapshot: defaults overlaid with DB overrides.
func (ch *ConfigHandler) Get(c *gin.Context) {
	snap, err := ch.configLoader.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": snap})
}

// Set upserts one config value. Batch runs pick it up on their next load;
// nothing is rescored retroactively.
func (ch *ConfigHandler) Set(c *gin.Context) {
	var req struct {
		ConfigType string  `json:"config_type"`
		Key        string  `json:"key"`
		Value      float64 `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	switch req.ConfigType {
	case types.ConfigTypeRelationshipWeight, types.ConfigTypePriorityWeight, types.ConfigTypeGeneral:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid config_type"})
		return
	}
	if req.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	if err := ch.configRepo.SetValue(c.Request.Context(), nil, req.ConfigType, req.Key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}
