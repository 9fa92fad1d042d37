package repos

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

type RevisionRepo interface {
	Create(dbc dbctx.Context, revisions []*types.AssetRevision) ([]*types.AssetRevision, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AssetRevision, error)
	GetLatestByAssetID(dbc dbctx.Context, assetID uuid.UUID) (*types.AssetRevision, error)
	GetByAssetAndNumber(dbc dbctx.Context, assetID uuid.UUID, number int) (*types.AssetRevision, error)
	MaxRevisionNumber(dbc dbctx.Context, assetID uuid.UUID) (int, error)
	ListByAssetID(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetRevision, error)
	ListAll(dbc dbctx.Context) ([]*types.AssetRevision, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// UpdateAnnotationsVersioned swaps the annotation list only when the
	// stored lock_version still matches; reports whether the write landed.
	UpdateAnnotationsVersioned(dbc dbctx.Context, id uuid.UUID, lockVersion int, annotations datatypes.JSON) (bool, error)
}

type revisionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRevisionRepo(db *gorm.DB, baseLog *logger.Logger) RevisionRepo {
	return &revisionRepo{db: db, log: baseLog.With("repo", "RevisionRepo")}
}

func (r *revisionRepo) Create(dbc dbctx.Context, revisions []*types.AssetRevision) ([]*types.AssetRevision, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(revisions) == 0 {
		return []*types.AssetRevision{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&revisions).Error; err != nil {
		return nil, err
	}
	return revisions, nil
}

func (r *revisionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AssetRevision, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var rev types.AssetRevision
	err := transaction.WithContext(dbc.Ctx).
		Preload("RevisionFile").
		Where("id = ?", id).
		Limit(1).
		Find(&rev).Error
	if err != nil {
		return nil, err
	}
	if rev.ID == uuid.Nil {
		return nil, nil
	}
	return &rev, nil
}

func (r *revisionRepo) GetLatestByAssetID(dbc dbctx.Context, assetID uuid.UUID) (*types.AssetRevision, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if assetID == uuid.Nil {
		return nil, nil
	}
	var rev types.AssetRevision
	err := transaction.WithContext(dbc.Ctx).
		Preload("RevisionFile").
		Where("marketing_asset_id = ?", assetID).
		Order("revision_number DESC").
		Limit(1).
		Find(&rev).Error
	if err != nil {
		return nil, err
	}
	if rev.ID == uuid.Nil {
		return nil, nil
	}
	return &rev, nil
}

func (r *revisionRepo) GetByAssetAndNumber(dbc dbctx.Context, assetID uuid.UUID, number int) (*types.AssetRevision, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if assetID == uuid.Nil || number <= 0 {
		return nil, nil
	}
	var rev types.AssetRevision
	err := transaction.WithContext(dbc.Ctx).
		Preload("RevisionFile").
		Where("marketing_asset_id = ? AND revision_number = ?", assetID, number).
		Limit(1).
		Find(&rev).Error
	if err != nil {
		return nil, err
	}
	if rev.ID == uuid.Nil {
		return nil, nil
	}
	return &rev, nil
}

func (r *revisionRepo) MaxRevisionNumber(dbc dbctx.Context, assetID uuid.UUID) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if assetID == uuid.Nil {
		return 0, nil
	}
	var max int
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.AssetRevision{}).
		Where("marketing_asset_id = ?", assetID).
		Select("COALESCE(MAX(revision_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *revisionRepo) ListByAssetID(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetRevision, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AssetRevision
	if assetID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("RevisionFile").
		Where("marketing_asset_id = ?", assetID).
		Order("revision_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *revisionRepo) ListAll(dbc dbctx.Context) ([]*types.AssetRevision, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AssetRevision
	if err := transaction.WithContext(dbc.Ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *revisionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.AssetRevision{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *revisionRepo) UpdateAnnotationsVersioned(dbc dbctx.Context, id uuid.UUID, lockVersion int, annotations datatypes.JSON) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return false, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.AssetRevision{}).
		Where("id = ? AND lock_version = ?", id, lockVersion).
		Updates(map[string]interface{}{
			"annotations":  annotations,
			"lock_version": lockVersion + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
