package db

import (
	"fmt"

	types "github.com/brandlight/ims-backend/internal/domain"
)

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		// Identity + auth
		&types.User{},
		&types.UserToken{},

		// Campaign grouping
		&types.Project{},

		// Files + assets + revisions
		&types.StoredFile{},
		&types.MarketingAsset{},
		&types.AssetRevision{},

		// Inbox + activity trail
		&types.Notification{},
		&types.AuditEvent{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	if err := s.db.Exec(`
		ALTER TABLE "user_token"
		DROP CONSTRAINT IF EXISTS "fk_user_token_user_id";
	`).Error; err != nil {
		return fmt.Errorf("failed to reset fk_user_token_user_id: %w", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "user_token"
		ADD CONSTRAINT "fk_user_token_user_id"
		FOREIGN KEY ("user_id")
		REFERENCES "app_user"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		return fmt.Errorf("failed to add fk_user_token_user_id: %w", err)
	}

	if err := s.db.Exec(`
		ALTER TABLE "asset_revision"
		DROP CONSTRAINT IF EXISTS "fk_asset_revision_asset_id";
	`).Error; err != nil {
		return fmt.Errorf("failed to reset fk_asset_revision_asset_id: %w", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "asset_revision"
		ADD CONSTRAINT "fk_asset_revision_asset_id"
		FOREIGN KEY ("marketing_asset_id")
		REFERENCES "marketing_asset"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		return fmt.Errorf("failed to add fk_asset_revision_asset_id: %w", err)
	}

	s.log.Info("Postgres migration complete")
	return nil
}
