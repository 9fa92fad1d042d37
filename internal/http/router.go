package http

import (
	"github.com/gin-gonic/gin"

	types "github.com/brandlight/ims-backend/internal/domain"
	httpH "github.com/brandlight/ims-backend/internal/http/handlers"
	httpMW "github.com/brandlight/ims-backend/internal/http/middleware"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler         *httpH.AuthHandler
	AssetHandler        *httpH.AssetHandler
	AnnotationHandler   *httpH.AnnotationHandler
	WorkflowHandler     *httpH.WorkflowHandler
	DashboardHandler    *httpH.DashboardHandler
	ProjectHandler      *httpH.ProjectHandler
	NotificationHandler *httpH.NotificationHandler
	MaintenanceHandler  *httpH.MaintenanceHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Assets
		if cfg.AssetHandler != nil {
			protected.POST("/assets", cfg.AssetHandler.Create)
			protected.GET("/assets/:id", cfg.AssetHandler.Get)
			protected.PATCH("/assets/:id", cfg.AssetHandler.Update)
			protected.GET("/assets/:id/revisions", cfg.AssetHandler.ListRevisions)
			protected.POST("/assets/:id/revisions", cfg.AssetHandler.UploadRevision)
			protected.PUT("/assets/:id/brief", cfg.AssetHandler.SaveContentBrief)
			// Legacy clients still post to the old brief endpoint.
			protected.POST("/assets/:id/brief/update", cfg.AssetHandler.SaveContentBrief)
			protected.GET("/files/:id/download", cfg.AssetHandler.DownloadFile)
		}

		// Annotations
		if cfg.AnnotationHandler != nil {
			protected.POST("/assets/:id/annotations", cfg.AnnotationHandler.Add)
			protected.GET("/assets/:id/annotations", cfg.AnnotationHandler.List)
		}

		// Workflow
		if cfg.WorkflowHandler != nil {
			protected.GET("/assets/:id/transitions", cfg.WorkflowHandler.ListTransitions)
			protected.POST("/assets/:id/transitions", cfg.WorkflowHandler.ApplyTransition)
		}

		// Dashboard
		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard/summary", cfg.DashboardHandler.Summary)
			protected.GET("/dashboard/assets", cfg.DashboardHandler.RecentAssets)
			protected.GET("/dashboard/uploads", cfg.DashboardHandler.RecentUploads)
			protected.GET("/search", cfg.DashboardHandler.Search)
			protected.GET("/audit-logs", cfg.DashboardHandler.AuditLogs)
		}

		// Projects
		if cfg.ProjectHandler != nil {
			protected.POST("/projects", cfg.ProjectHandler.Create)
			protected.GET("/projects/:id", cfg.ProjectHandler.Get)
			protected.GET("/projects/:id/assets", cfg.ProjectHandler.ListAssets)
		}

		// Notifications
		if cfg.NotificationHandler != nil {
			protected.GET("/notifications", cfg.NotificationHandler.Feed)
			protected.POST("/notifications/mark-read", cfg.NotificationHandler.MarkAllRead)
			protected.GET("/mention-candidates", cfg.NotificationHandler.MentionCandidates)
		}

		// Maintenance
		if cfg.MaintenanceHandler != nil && cfg.AuthMiddleware != nil {
			protected.POST("/maintenance/fix-files",
				cfg.AuthMiddleware.RequireRole(types.RoleAdmin),
				cfg.MaintenanceHandler.FixAllFiles)
		}
	}

	return r
}
