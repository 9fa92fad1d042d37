package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document types a StoredFile can be attached to.
const (
	DocTypeMarketingAsset = "MarketingAsset"
	DocTypeAssetRevision  = "AssetRevision"
	DocTypeProject        = "Project"
)

// StoredFile tracks one uploaded object. IsPrivate reflects which bucket the
// object currently lives in; revision files stay private forever, an asset's
// current file goes public only once the asset is Approved.
type StoredFile struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FileName   string    `gorm:"column:file_name;not null;index" json:"file_name"`
	StorageKey string    `gorm:"column:storage_key;not null;index" json:"storage_key"`
	FileURL    string    `gorm:"column:file_url" json:"file_url"`
	SizeBytes  int64     `gorm:"column:size_bytes" json:"size_bytes"`
	MimeType   string    `gorm:"column:mime_type" json:"mime_type"`
	IsPrivate  bool      `gorm:"column:is_private;not null;default:true" json:"is_private"`

	AttachedToType string     `gorm:"column:attached_to_type;index" json:"attached_to_type"`
	AttachedToID   *uuid.UUID `gorm:"type:uuid;column:attached_to_id;index" json:"attached_to_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (StoredFile) TableName() string { return "stored_file" }
