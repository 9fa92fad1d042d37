package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/data/repos"
	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/requestdata"
)

// AuditService appends to the immutable activity trail. Recording is best
// effort from the caller's point of view; a failed audit write never fails
// the operation being audited.
type AuditService interface {
	Record(dbc dbctx.Context, documentType string, documentID uuid.UUID, action, details string)
	ListRecent(dbc dbctx.Context, limit int, action string, documentTypes []string) ([]*types.AuditEvent, error)
}

type auditService struct {
	db     *gorm.DB
	log    *logger.Logger
	events repos.AuditRepo
}

func NewAuditService(db *gorm.DB, baseLog *logger.Logger, events repos.AuditRepo) AuditService {
	return &auditService{
		db:     db,
		log:    baseLog.With("service", "AuditService"),
		events: events,
	}
}

func (s *auditService) Record(dbc dbctx.Context, documentType string, documentID uuid.UUID, action, details string) {
	action = strings.TrimSpace(action)
	if action == "" {
		action = types.AuditActionModified
	}
	row := &types.AuditEvent{
		ID:           uuid.New(),
		DocumentType: documentType,
		DocumentID:   documentID,
		Action:       action,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
	if rd := requestdata.GetRequestData(dbc.Ctx); rd != nil {
		actorID := rd.UserID
		row.ActorUserID = &actorID
		row.ActorName = rd.FullName
	}
	if _, err := s.events.Create(dbc, []*types.AuditEvent{row}); err != nil {
		s.log.Warn("audit write failed",
			"document_type", documentType,
			"document_id", documentID.String(),
			"action", action,
			"err", err.Error(),
		)
	}
}

func (s *auditService) ListRecent(dbc dbctx.Context, limit int, action string, documentTypes []string) ([]*types.AuditEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := s.events.ListRecent(dbc, limit, action, documentTypes)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}
