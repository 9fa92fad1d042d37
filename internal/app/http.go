package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	ihttp "github.com/brandlight/ims-backend/internal/http"
	httpH "github.com/brandlight/ims-backend/internal/http/handlers"
	httpMW "github.com/brandlight/ims-backend/internal/http/middleware"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	Asset        *httpH.AssetHandler
	Annotation   *httpH.AnnotationHandler
	Workflow     *httpH.WorkflowHandler
	Dashboard    *httpH.DashboardHandler
	Project      *httpH.ProjectHandler
	Notification *httpH.NotificationHandler
	Maintenance  *httpH.MaintenanceHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(log, db),
		Auth:         httpH.NewAuthHandler(log, s.Auth),
		Asset:        httpH.NewAssetHandler(log, s.Asset, s.File),
		Annotation:   httpH.NewAnnotationHandler(log, s.Annotation),
		Workflow:     httpH.NewWorkflowHandler(log, s.Lifecycle),
		Dashboard:    httpH.NewDashboardHandler(log, s.Dashboard),
		Project:      httpH.NewProjectHandler(log, s.Project, s.Asset),
		Notification: httpH.NewNotificationHandler(log, s.Notification),
		Maintenance:  httpH.NewMaintenanceHandler(log, s.Maintenance),
	}
}

func wireRouter(log *logger.Logger, h Handlers, auth *httpMW.AuthMiddleware) *gin.Engine {
	return ihttp.NewRouter(ihttp.RouterConfig{
		Log:            log,
		AuthMiddleware: auth,

		AuthHandler:         h.Auth,
		AssetHandler:        h.Asset,
		AnnotationHandler:   h.Annotation,
		WorkflowHandler:     h.Workflow,
		DashboardHandler:    h.Dashboard,
		ProjectHandler:      h.Project,
		NotificationHandler: h.Notification,
		MaintenanceHandler:  h.Maintenance,

		HealthHandler: h.Health,
	})
}
