package main

import (
	"time"

	"github.com/atelierhq/atelierflow/backend/internal/config"
	"github.com/atelierhq/atelierflow/backend/internal/handlers"
	"github.com/atelierhq/atelierflow/backend/internal/models"
	"github.com/atelierhq/atelierflow/backend/internal/services"
	"github.com/atelierhq/atelierflow/backend/internal/utils"
	"github.com/atelierhq/atelierflow/backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg               *config.Config
	events            *services.EventHub
	taskQueue         services.TaskQueue
	worker            *services.Worker
	generationService *services.GenerationService
	presenceService   *services.PresenceService
	cleanupCron       *cron.Cron
	authHandler       *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	services.InitActivityLogger(models.GetDB())
	cleanupCron := services.StartLogCleanupScheduler(models.GetDB(), cfg.Retention.ActivityLogDays)

	events := services.GetEventHub()

	// Presence store: in-process, prune-on-update with the configured
	// staleness window.
	presenceStore := services.NewMemoryPresenceStore(
		time.Duration(cfg.Presence.StalenessMinutes) * time.Minute)
	presenceService := services.NewPresenceService(presenceStore, events)

	// Generation pipeline: provider + queue + coordinator
	provider := services.NewProvider(&cfg.Provider)

	threadService := services.NewThreadService(models.GetDB(), events)
	taskQueue := services.InitTaskQueue(cfg)
	generationService := services.NewGenerationService(
		models.GetDB(), provider, &cfg.Provider, threadService, events, taskQueue)

	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(generationService.ProcessGeneration)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(generationService.ProcessGeneration)
			worker.Start()
		}
	}

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:               cfg,
		events:            events,
		taskQueue:         taskQueue,
		worker:            worker,
		generationService: generationService,
		presenceService:   presenceService,
		cleanupCron:       cleanupCron,
		authHandler:       authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	if s.cleanupCron != nil {
		s.cleanupCron.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("All services stopped")
}
