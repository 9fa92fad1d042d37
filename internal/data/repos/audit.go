package repos

import (
	"gorm.io/gorm"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

type AuditRepo interface {
	Create(dbc dbctx.Context, events []*types.AuditEvent) ([]*types.AuditEvent, error)
	ListRecent(dbc dbctx.Context, limit int, action string, documentTypes []string) ([]*types.AuditEvent, error)
}

type auditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditRepo(db *gorm.DB, baseLog *logger.Logger) AuditRepo {
	return &auditRepo{db: db, log: baseLog.With("repo", "AuditRepo")}
}

func (r *auditRepo) Create(dbc dbctx.Context, events []*types.AuditEvent) ([]*types.AuditEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(events) == 0 {
		return []*types.AuditEvent{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *auditRepo) ListRecent(dbc dbctx.Context, limit int, action string, documentTypes []string) ([]*types.AuditEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Order("created_at DESC")
	if action != "" {
		q = q.Where("action = ?", action)
	}
	if len(documentTypes) > 0 {
		q = q.Where("document_type IN ?", documentTypes)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.AuditEvent
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
