package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProjectStatusActive    = "Active"
	ProjectStatusOnHold    = "On Hold"
	ProjectStatusCompleted = "Completed"
)

// Project groups marketing assets under one campaign effort. Read-mostly.
type Project struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Status      string     `gorm:"column:status;not null;default:'Active'" json:"status"`
	Description string     `gorm:"column:description" json:"description"`
	DueDate     *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	OwnerUserID uuid.UUID  `gorm:"type:uuid;column:owner_user_id;index" json:"owner_user_id"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }
