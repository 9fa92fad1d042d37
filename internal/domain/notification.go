package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationKindMention  = "Mention"
	NotificationKindWorkflow = "Workflow"
	NotificationKindInfo     = "Info"
)

type Notification struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Subject    string     `gorm:"column:subject;not null" json:"subject"`
	ForUserID  uuid.UUID  `gorm:"type:uuid;column:for_user_id;not null;index" json:"for_user_id"`
	FromUserID *uuid.UUID `gorm:"type:uuid;column:from_user_id" json:"from_user_id,omitempty"`
	Kind       string     `gorm:"column:kind;not null;default:'Info'" json:"kind"`

	DocumentType string     `gorm:"column:document_type;index" json:"document_type"`
	DocumentID   *uuid.UUID `gorm:"type:uuid;column:document_id;index" json:"document_id,omitempty"`

	Read bool `gorm:"column:read;not null;default:false;index" json:"read"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Notification) TableName() string { return "notification" }
