package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssetRevision is a numbered snapshot of an asset's file, annotations and
// content brief. Revision numbers start at 1 and only ever grow; revision 1
// is the immutable baseline once a later revision exists. Revisions are never
// soft-deleted.
type AssetRevision struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MarketingAssetID uuid.UUID       `gorm:"type:uuid;column:marketing_asset_id;not null;index" json:"marketing_asset_id"`
	MarketingAsset   *MarketingAsset `gorm:"constraint:OnDelete:CASCADE;foreignKey:MarketingAssetID;references:ID" json:"marketing_asset,omitempty"`

	RevisionNumber int         `gorm:"column:revision_number;not null;index" json:"revision_number"`
	RevisionFileID uuid.UUID   `gorm:"type:uuid;column:revision_file_id;not null" json:"revision_file_id"`
	RevisionFile   *StoredFile `gorm:"foreignKey:RevisionFileID;references:ID" json:"revision_file,omitempty"`

	Annotations   datatypes.JSON `gorm:"column:annotations;type:jsonb" json:"annotations"`
	ContentBrief  string         `gorm:"column:content_brief" json:"content_brief"`
	RevisionNotes string         `gorm:"column:revision_notes" json:"revision_notes"`

	CreatedByUserID uuid.UUID `gorm:"type:uuid;column:created_by_user_id;index" json:"created_by_user_id"`

	// LockVersion guards the read-modify-write of the annotation list.
	LockVersion int `gorm:"column:lock_version;not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AssetRevision) TableName() string { return "asset_revision" }
