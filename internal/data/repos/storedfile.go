package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

type StoredFileRepo interface {
	Create(dbc dbctx.Context, files []*types.StoredFile) ([]*types.StoredFile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StoredFile, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.StoredFile, error)
	CountByFileNamePrefix(dbc dbctx.Context, prefix string) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	ListRecentByAttachedType(dbc dbctx.Context, attachedType string, limit int) ([]*types.StoredFile, error)
	ListAll(dbc dbctx.Context) ([]*types.StoredFile, error)
}

type storedFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoredFileRepo(db *gorm.DB, baseLog *logger.Logger) StoredFileRepo {
	return &storedFileRepo{db: db, log: baseLog.With("repo", "StoredFileRepo")}
}

func (r *storedFileRepo) Create(dbc dbctx.Context, files []*types.StoredFile) ([]*types.StoredFile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(files) == 0 {
		return []*types.StoredFile{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *storedFileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StoredFile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var file types.StoredFile
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&file).Error
	if err != nil {
		return nil, err
	}
	if file.ID == uuid.Nil {
		return nil, nil
	}
	return &file, nil
}

func (r *storedFileRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.StoredFile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StoredFile
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *storedFileRepo) CountByFileNamePrefix(dbc dbctx.Context, prefix string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if prefix == "" {
		return 0, nil
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.StoredFile{}).
		Where("file_name LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *storedFileRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.StoredFile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *storedFileRepo) ListAll(dbc dbctx.Context) ([]*types.StoredFile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StoredFile
	if err := transaction.WithContext(dbc.Ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *storedFileRepo) ListRecentByAttachedType(dbc dbctx.Context, attachedType string, limit int) ([]*types.StoredFile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StoredFile
	q := transaction.WithContext(dbc.Ctx).Order("created_at DESC")
	if attachedType != "" {
		q = q.Where("attached_to_type = ?", attachedType)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
