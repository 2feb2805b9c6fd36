package main

import (
	"github.com/atelierhq/atelierflow/backend/internal/handlers"
	"github.com/atelierhq/atelierflow/backend/internal/middleware"
	"github.com/atelierhq/atelierflow/backend/internal/models"
	"github.com/atelierhq/atelierflow/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for generation routes (provider calls are expensive)
	generationLimiter := middleware.NewRateLimiter(2, 5)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// SSE events (public route with internal token validation)
		eventsHandler := handlers.NewEventsHandler(svc.events)
		api.GET("/events/stream", eventsHandler.Stream)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Projects and the phase workflow
			workflowHandler := handlers.NewWorkflowHandler(models.GetDB(), svc.events)
			protected.POST("/projects", workflowHandler.CreateProject)
			protected.GET("/projects/:id", workflowHandler.GetProject)
			protected.GET("/projects/:id/phases", workflowHandler.ListPhases)
			protected.PUT("/projects/:id/phases/:phase/start", workflowHandler.StartPhase)
			protected.PUT("/projects/:id/phases/:phase/review", workflowHandler.MarkPhaseReview)
			protected.PUT("/projects/:id/phases/:phase/complete", workflowHandler.CompletePhase)
			protected.POST("/projects/:id/phases/:phase/artifacts/initialize", workflowHandler.InitializeArtifacts)
			protected.POST("/projects/:id/artifacts", workflowHandler.CreateArtifact)
			protected.GET("/projects/:id/artifacts", workflowHandler.ListArtifacts)
			protected.GET("/artifacts/:id", workflowHandler.GetArtifact)
			protected.PUT("/artifacts/:id", workflowHandler.UpdateArtifact)
			protected.PUT("/artifacts/:id/status", workflowHandler.UpdateArtifactStatus)

			// Workspaces, teams, channels
			workspaceHandler := handlers.NewWorkspaceHandler(models.GetDB())
			protected.POST("/workspaces", workspaceHandler.Create)
			protected.GET("/workspaces/:id", workspaceHandler.GetByID)
			protected.DELETE("/workspaces/:id", workspaceHandler.Archive)
			protected.GET("/projects/:id/workspace", workspaceHandler.GetByProject)
			protected.POST("/teams/:id/members", workspaceHandler.AddMember)
			protected.POST("/workspaces/:id/channels", workspaceHandler.CreateChannel)
			protected.POST("/channels/:id/members", workspaceHandler.AddChannelMember)
			protected.POST("/channels/:id/agents", workspaceHandler.AssignAgent)

			// Threads and messages
			threadHandler := handlers.NewThreadHandler(models.GetDB(), svc.events)
			protected.POST("/channels/:id/threads", threadHandler.Create)
			protected.GET("/channels/:id/threads", threadHandler.List)
			protected.GET("/threads/:id", threadHandler.GetByID)
			protected.POST("/threads/:id/messages", threadHandler.SendMessage)
			protected.GET("/threads/:id/messages", threadHandler.ListMessages)
			protected.PUT("/threads/:id/pin", threadHandler.SetPinned)
			protected.PUT("/threads/:id/resolve", threadHandler.Resolve)
			protected.PUT("/threads/:id/archive", threadHandler.Archive)
			protected.PUT("/messages/:id", threadHandler.EditMessage)
			protected.POST("/messages/:id/reactions", threadHandler.AddReaction)
			protected.DELETE("/messages/:id/reactions", threadHandler.RemoveReaction)

			// Presence
			presenceHandler := handlers.NewPresenceHandler(svc.presenceService)
			protected.PUT("/threads/:id/presence", presenceHandler.Update)
			protected.GET("/threads/:id/presence", presenceHandler.GetStatus)

			// AI generation (rate limited)
			generationHandler := handlers.NewGenerationHandler(svc.generationService)
			generate := protected.Group("", generationLimiter.Middleware())
			{
				generate.POST("/threads/:id/generate", generationHandler.GenerateMessage)
				generate.POST("/threads/:id/generate-ui", generationHandler.GenerateUI)
			}
		}

		// Admin only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			generationHandler := handlers.NewGenerationHandler(svc.generationService)
			admin.GET("/generations/stuck", generationHandler.ListStuck)

			activityLogHandler := handlers.NewActivityLogHandler(models.GetDB())
			admin.GET("/activity-logs", activityLogHandler.List)
			admin.GET("/activity-logs/modules", activityLogHandler.GetModules)
		}
	}
}
