package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/linkforge/linkforge-backend/internal/handlers"
	"github.com/linkforge/linkforge-backend/internal/utils"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	HealthcheckHandler *handlers.HealthcheckHandler
	ContactHandler     *handlers.ContactHandler
	CategoryHandler    *handlers.CategoryHandler
	TemplateHandler    *handlers.TemplateHandler
	QueueHandler       *handlers.QueueHandler
	ImportHandler      *handlers.ImportHandler
	BatchHandler       *handlers.BatchHandler
	ConfigHandler      *handlers.ConfigHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(utils.GetEnv("SERVICE_NAME", "linkforge-backend", nil)))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)

	api := router.Group("/api")
	{
		// Contacts
		api.POST("/contacts", cfg.ContactHandler.Create)
		api.GET("/contacts", cfg.ContactHandler.List)
		api.GET("/contacts/:id", cfg.ContactHandler.Get)
		api.PATCH("/contacts/:id", cfg.ContactHandler.Update)
		api.DELETE("/contacts/:id", cfg.ContactHandler.Delete)
		api.POST("/contacts/:id/categories", cfg.ContactHandler.AssignCategories)
		api.POST("/contacts/:id/interactions", cfg.ContactHandler.LogInteraction)
		api.GET("/contacts/:id/interactions", cfg.ContactHandler.ListInteractions)
		api.GET("/contacts/:id/score-history", cfg.ContactHandler.ScoreHistory)
		api.GET("/contacts/:id/status-history", cfg.ContactHandler.StatusHistory)
		api.POST("/contacts/:id/status", cfg.ContactHandler.TransitionStatus)
		api.POST("/contacts/:id/status/check", cfg.ContactHandler.CheckStatus)

		// Categories
		api.POST("/categories", cfg.CategoryHandler.Create)
		api.GET("/categories", cfg.CategoryHandler.List)

		// Templates
		api.POST("/templates", cfg.TemplateHandler.Create)
		api.GET("/templates", cfg.TemplateHandler.List)
		api.PATCH("/templates/:id", cfg.TemplateHandler.Update)

		// Queue
		api.GET("/queue", cfg.QueueHandler.List)
		api.POST("/queue/generate", cfg.QueueHandler.Generate)
		api.POST("/queue/:id/approve", cfg.QueueHandler.Approve)
		api.POST("/queue/:id/skip", cfg.QueueHandler.Skip)
		api.POST("/queue/:id/snooze", cfg.QueueHandler.Snooze)
		api.POST("/queue/:id/execute", cfg.QueueHandler.Execute)

		// Imports
		api.POST("/imports/csv", cfg.ImportHandler.ImportCSV)

		// Batch triggers
		api.POST("/batch/scores", cfg.BatchHandler.TriggerScores)
		api.POST("/batch/priorities", cfg.BatchHandler.TriggerPriorities)
		api.POST("/batch/queue", cfg.BatchHandler.TriggerQueueGenerate)
		api.GET("/batch/jobs/:id", cfg.BatchHandler.GetJob)

		// Config
		api.GET("/config", cfg.ConfigHandler.Get)
		api.PUT("/config", cfg.ConfigHandler.Set)
	}

	return router
}
