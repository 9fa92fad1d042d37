package app

import (
	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/data/repos"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

type Repos struct {
	User         repos.UserRepo
	UserToken    repos.UserTokenRepo
	Project      repos.ProjectRepo
	StoredFile   repos.StoredFileRepo
	Asset        repos.AssetRepo
	Revision     repos.RevisionRepo
	Notification repos.NotificationRepo
	Audit        repos.AuditRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		UserToken:    repos.NewUserTokenRepo(db, log),
		Project:      repos.NewProjectRepo(db, log),
		StoredFile:   repos.NewStoredFileRepo(db, log),
		Asset:        repos.NewAssetRepo(db, log),
		Revision:     repos.NewRevisionRepo(db, log),
		Notification: repos.NewNotificationRepo(db, log),
		Audit:        repos.NewAuditRepo(db, log),
	}
}
