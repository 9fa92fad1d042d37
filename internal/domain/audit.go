package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionCreated  = "Created"
	AuditActionModified = "Modified"
	AuditActionWorkflow = "Workflow"
	AuditActionComment  = "Comment"
	AuditActionExport   = "Export"
)

// AuditEvent is one row of the asset/project activity timeline. Workflow
// transitions, informational comments and export events all land here.
type AuditEvent struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocumentType string     `gorm:"column:document_type;not null;index" json:"document_type"`
	DocumentID   uuid.UUID  `gorm:"type:uuid;column:document_id;not null;index" json:"document_id"`
	ActorUserID  *uuid.UUID `gorm:"type:uuid;column:actor_user_id" json:"actor_user_id,omitempty"`
	ActorName    string     `gorm:"column:actor_name" json:"actor_name"`
	Action       string     `gorm:"column:action;not null;index" json:"action"`
	Details      string     `gorm:"column:details" json:"details"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (AuditEvent) TableName() string { return "audit_event" }
