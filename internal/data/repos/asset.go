package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

type AssetRepo interface {
	Create(dbc dbctx.Context, assets []*types.MarketingAsset) ([]*types.MarketingAsset, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MarketingAsset, error)
	Update(dbc dbctx.Context, asset *types.MarketingAsset) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	ListRecent(dbc dbctx.Context, limit int, statuses []string) ([]*types.MarketingAsset, error)
	ListByProjectID(dbc dbctx.Context, projectID uuid.UUID) ([]*types.MarketingAsset, error)
	ListAll(dbc dbctx.Context) ([]*types.MarketingAsset, error)
	CountByStatus(dbc dbctx.Context) (map[string]int64, error)
	SearchLike(dbc dbctx.Context, query string, limit int) ([]*types.MarketingAsset, error)
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func (r *assetRepo) Create(dbc dbctx.Context, assets []*types.MarketingAsset) ([]*types.MarketingAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(assets) == 0 {
		return []*types.MarketingAsset{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MarketingAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var asset types.MarketingAsset
	err := transaction.WithContext(dbc.Ctx).
		Preload("LatestFile").
		Where("id = ?", id).
		Limit(1).
		Find(&asset).Error
	if err != nil {
		return nil, err
	}
	if asset.ID == uuid.Nil {
		return nil, nil
	}
	return &asset, nil
}

func (r *assetRepo) Update(dbc dbctx.Context, asset *types.MarketingAsset) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Save(asset).Error
}

func (r *assetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MarketingAsset{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *assetRepo) ListRecent(dbc dbctx.Context, limit int, statuses []string) ([]*types.MarketingAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Preload("LatestFile").
		Order("created_at DESC")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.MarketingAsset
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) ListByProjectID(dbc dbctx.Context, projectID uuid.UUID) ([]*types.MarketingAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MarketingAsset
	if projectID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("LatestFile").
		Where("project_id = ?", projectID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) ListAll(dbc dbctx.Context) ([]*types.MarketingAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MarketingAsset
	if err := transaction.WithContext(dbc.Ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) CountByStatus(dbc dbctx.Context) (map[string]int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.MarketingAsset{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		status := row.Status
		if status == "" {
			status = types.StatusDraft
		}
		out[status] += row.Count
	}
	return out, nil
}

func (r *assetRepo) SearchLike(dbc dbctx.Context, query string, limit int) ([]*types.MarketingAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MarketingAsset
	if query == "" {
		return out, nil
	}
	like := "%" + query + "%"
	q := transaction.WithContext(dbc.Ctx).
		Where("title ILIKE ? OR campaign ILIKE ? OR id::text ILIKE ?", like, like, like).
		Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
