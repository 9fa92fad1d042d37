package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

type NotificationRepo interface {
	Create(dbc dbctx.Context, notifications []*types.Notification) ([]*types.Notification, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Notification, error)
	CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	MarkAllRead(dbc dbctx.Context, userID uuid.UUID) error
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) Create(dbc dbctx.Context, notifications []*types.Notification) ([]*types.Notification, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(notifications) == 0 {
		return []*types.Notification{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Notification, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Notification
	if userID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("for_user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepo) CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return 0, nil
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Notification{}).
		Where("for_user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepo) MarkAllRead(dbc dbctx.Context, userID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Notification{}).
		Where("for_user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
