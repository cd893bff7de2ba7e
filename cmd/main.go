package main

import (
	"context"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/linkforge/linkforge-backend/internal/clients/redis"
	"github.com/linkforge/linkforge-backend/internal/db"
	"github.com/linkforge/linkforge-backend/internal/handlers"
	"github.com/linkforge/linkforge-backend/internal/jobs"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/observability"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/scoringconfig"
	"github.com/linkforge/linkforge-backend/internal/server"
	"github.com/linkforge/linkforge-backend/internal/services"
	"github.com/linkforge/linkforge-backend/internal/utils"
	"os"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: utils.GetEnv("SERVICE_NAME", "linkforge-backend", log),
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() { _ = shutdownOtel(ctx) }()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	contactRepo := repos.NewContactRepo(thePG, log)
	interactionRepo := repos.NewInteractionRepo(thePG, log)
	scoreHistoryRepo := repos.NewScoreHistoryRepo(thePG, log)
	statusHistoryRepo := repos.NewStatusHistoryRepo(thePG, log)
	queueItemRepo := repos.NewQueueItemRepo(thePG, log)
	scoringConfigRepo := repos.NewScoringConfigRepo(thePG, log)
	templateRepo := repos.NewTemplateRepo(thePG, log)
	categoryRepo := repos.NewCategoryRepo(thePG, log)
	jobRunRepo := repos.NewJobRunRepo(thePG, log)

	// Config defaults
	configLoader := scoringconfig.NewLoader(scoringConfigRepo, log)
	if err := configLoader.Seed(ctx); err != nil {
		log.Warn("Scoring config seed failed", "error", err)
	}

	// Redis (optional: without it execution is unthrottled and queue
	// notifications are dropped)
	var (
		limiter  services.ActionLimiter
		notifier services.QueueNotifier
	)
	rdb, err := redis.NewClient(log)
	if err != nil {
		log.Warn("Redis init failed, continuing without rate limiting", "error", err)
	} else if rdb != nil {
		limiter = redis.NewActionLimiter(rdb, log)
		notifier = redis.NewNotifyBus(rdb, log)
	}

	// Services
	log.Info("Setting up Services from main...")
	dailyActionLimit := int64(utils.GetEnvAsInt("DAILY_ACTION_LIMIT", 25, log))
	statusService := services.NewStatusService(thePG, log, contactRepo, interactionRepo, scoreHistoryRepo)
	scoringService := services.NewScoringService(thePG, log, contactRepo, interactionRepo, scoreHistoryRepo, configLoader, statusService)
	priorityService := services.NewPriorityService(thePG, log, contactRepo, scoreHistoryRepo, configLoader)
	queueService := services.NewQueueService(thePG, log, queueItemRepo, contactRepo, interactionRepo, scoreHistoryRepo, statusHistoryRepo, templateRepo, configLoader, limiter, notifier, dailyActionLimit)
	importService := services.NewImportService(thePG, log, contactRepo, interactionRepo)

	// Jobs
	registry := jobs.NewRegistry()
	if err := registry.Register(&jobs.ScoreBatchHandler{Scoring: scoringService}); err != nil {
		log.Error("Handler registration failed", "error", err)
		os.Exit(1)
	}
	if err := registry.Register(&jobs.PriorityBatchHandler{Priority: priorityService}); err != nil {
		log.Error("Handler registration failed", "error", err)
		os.Exit(1)
	}
	if err := registry.Register(&jobs.QueueGenerateHandler{Queue: queueService}); err != nil {
		log.Error("Handler registration failed", "error", err)
		os.Exit(1)
	}
	jobs.NewWorker(thePG, log, jobRunRepo, registry).Start(ctx)
	jobs.NewScheduler(thePG, log, jobRunRepo).Start(ctx)

	// Handlers
	routerCfg := server.RouterConfig{
		HealthcheckHandler: handlers.NewHealthcheckHandler(thePG),
		ContactHandler:     handlers.NewContactHandler(contactRepo, interactionRepo, scoreHistoryRepo, statusHistoryRepo, categoryRepo, statusService),
		CategoryHandler:    handlers.NewCategoryHandler(categoryRepo),
		TemplateHandler:    handlers.NewTemplateHandler(templateRepo),
		QueueHandler:       handlers.NewQueueHandler(queueService),
		ImportHandler:      handlers.NewImportHandler(importService),
		BatchHandler:       handlers.NewBatchHandler(jobRunRepo),
		ConfigHandler:      handlers.NewConfigHandler(scoringConfigRepo, configLoader),
	}
	router := server.NewRouter(routerCfg)

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
