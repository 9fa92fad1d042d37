package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review pipeline states. Status mirrors WorkflowState once the workflow is
// engaged; see services.LifecycleService.
const (
	StatusDraft        = "Draft"
	StatusPeerReview   = "Peer Review"
	StatusHODApproval  = "HOD Approval"
	StatusFinalSignoff = "Final Sign-off"
	StatusApproved     = "Approved"
	StatusRejected     = "Rejected"
)

// ReviewStatuses are the intermediate states the dashboard groups as "In Review".
var ReviewStatuses = []string{StatusPeerReview, StatusHODApproval, StatusFinalSignoff}

type MarketingAsset struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title        string      `gorm:"column:title;not null" json:"title"`
	Campaign     string      `gorm:"column:campaign;index" json:"campaign"`
	Category     string      `gorm:"column:category;not null;default:'Asset'" json:"category"`
	Description  string      `gorm:"column:description" json:"description"`
	ExpiryDate   *time.Time  `gorm:"column:expiry_date" json:"expiry_date,omitempty"`
	LatestFileID *uuid.UUID  `gorm:"type:uuid;column:latest_file_id;index" json:"latest_file_id,omitempty"`
	LatestFile   *StoredFile `gorm:"foreignKey:LatestFileID;references:ID" json:"latest_file,omitempty"`

	Status        string `gorm:"column:status;not null;default:'Draft';index" json:"status"`
	WorkflowState string `gorm:"column:workflow_state;index" json:"workflow_state"`

	OwnerUserID uuid.UUID  `gorm:"type:uuid;column:owner_user_id;not null;index" json:"owner_user_id"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;column:project_id;index" json:"project_id,omitempty"`
	Project     *Project   `gorm:"foreignKey:ProjectID;references:ID" json:"project,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MarketingAsset) TableName() string { return "marketing_asset" }
