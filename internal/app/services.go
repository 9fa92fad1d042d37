package app

import (
	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/clients/gcp"
	redisclient "github.com/brandlight/ims-backend/internal/clients/redis"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Audit        services.AuditService
	File         services.FileService
	Notification services.NotificationService
	Revision     services.RevisionService
	Annotation   services.AnnotationService
	Lifecycle    services.LifecycleService
	Asset        services.AssetService
	Dashboard    services.DashboardService
	Project      services.ProjectService
	Maintenance  services.MaintenanceService
	Workflow     services.WorkflowEngine
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	bucket, err := gcp.NewBucketService(log)
	if err != nil {
		return Services{}, err
	}

	// The redis bus is optional; notifications degrade to rows only.
	var bus redisclient.NotifyBus
	if b, err := redisclient.NewNotifyBus(log); err != nil {
		log.Warn("redis notify bus unavailable, notifications are persist-only", "error", err)
	} else {
		bus = b
	}

	audit := services.NewAuditService(db, log, r.Audit)
	file := services.NewFileService(db, log, r.StoredFile, bucket)
	notification := services.NewNotificationService(db, log, r.Notification, r.User, r.Audit, bus)
	revision := services.NewRevisionService(db, log, r.Asset, r.Revision, audit)
	annotation := services.NewAnnotationService(db, log, r.Asset, r.Revision, revision, notification, audit)

	engine := services.NewDefaultWorkflowEngine()
	lifecycle := services.NewLifecycleService(db, log, r.Asset, engine, file, notification, audit)
	asset := services.NewAssetService(db, log, r.Asset, file, revision, lifecycle, notification, audit)
	dashboard := services.NewDashboardService(db, log, r.Asset, r.StoredFile, r.Project, audit)
	project := services.NewProjectService(db, log, r.Project, r.Asset, audit)
	maintenance := services.NewMaintenanceService(db, log, r.StoredFile, r.Asset, file)
	auth := services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	return Services{
		Auth:         auth,
		Audit:        audit,
		File:         file,
		Notification: notification,
		Revision:     revision,
		Annotation:   annotation,
		Lifecycle:    lifecycle,
		Asset:        asset,
		Dashboard:    dashboard,
		Project:      project,
		Maintenance:  maintenance,
		Workflow:     engine,
	}, nil
}
