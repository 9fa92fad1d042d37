package services

import (
	"fmt"
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

// CreateAssetInput is the multipart create payload: asset metadata plus the
// first file.
type CreateAssetInput struct {
	Title       string
	Campaign    string
	Category    string
	Description string
	ExpiryDate  *time.Time
	ProjectID   *uuid.UUID
	File        UploadInput
}

// UpdateAssetInput carries the editable metadata fields. Nil means leave the
// field alone.
type UpdateAssetInput struct {
	Title       *string
	Campaign    *string
	Category    *string
	Description *string
	ExpiryDate  *time.Time
}

// AssetDetail is the single-asset read model: the asset, its revision chain
// and the workflow actions available to the caller.
type AssetDetail struct {
	Asset       *types.MarketingAsset  `json:"asset"`
	Revisions   []*types.AssetRevision `json:"revisions"`
	Transitions []Transition           `json:"transitions"`
}

type AssetService interface {
	Create(dbc dbctx.Context, in CreateAssetInput) (*types.MarketingAsset, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*AssetDetail, error)
	Update(dbc dbctx.Context, id uuid.UUID, in UpdateAssetInput) (*types.MarketingAsset, error)
	UploadRevision(dbc dbctx.Context, assetID uuid.UUID, file UploadInput, notes string) (*types.AssetRevision, error)
	SaveContentBrief(dbc dbctx.Context, assetID uuid.UUID, brief string) (*types.AssetRevision, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.MarketingAsset, error)
}

type assetService struct {
	db        *gorm.DB
	log       *logger.Logger
	assets    repos.AssetRepo
	files     FileService
	revisions RevisionService
	lifecycle LifecycleService
	notify    NotificationService
	audit     AuditService
}

func NewAssetService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assets repos.AssetRepo,
	files FileService,
	revisions RevisionService,
	lifecycle LifecycleService,
	notify NotificationService,
	audit AuditService,
) AssetService {
	return &assetService{
		db:        db,
		log:       baseLog.With("service", "AssetService"),
		assets:    assets,
		files:     files,
		revisions: revisions,
		lifecycle: lifecycle,
		notify:    notify,
		audit:     audit,
	}
}

func (s *assetService) Create(dbc dbctx.Context, in CreateAssetInput) (*types.MarketingAsset, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("missing asset title")
	}
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.PermissionDenied("authentication required")
	}

	in.File.Private = true
	in.File.AttachedToType = types.DocTypeMarketingAsset
	file, err := s.files.StoreUpload(dbc, in.File)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "Asset"
	}

	asset := &types.MarketingAsset{
		ID:            uuid.New(),
		Title:         title,
		Campaign:      strings.TrimSpace(in.Campaign),
		Category:      category,
		Description:   in.Description,
		ExpiryDate:    in.ExpiryDate,
		LatestFileID:  &file.ID,
		Status:        types.StatusDraft,
		WorkflowState: types.StatusDraft,
		OwnerUserID:   rd.UserID,
		ProjectID:     in.ProjectID,
	}
	if _, err := s.assets.Create(dbc, []*types.MarketingAsset{asset}); err != nil {
		return nil, apierr.Internal(err)
	}

	// Back-link the file to its asset now the asset row exists.
	if err := s.files.Attach(dbc, file.ID, types.DocTypeMarketingAsset, asset.ID); err != nil {
		s.log.Warn("file back-link failed", "file_id", file.ID.String(), "err", err.Error())
	}

	s.audit.Record(dbc, types.DocTypeMarketingAsset, asset.ID, types.AuditActionCreated,
		"Asset created: "+title)
	s.log.Info("asset created", "asset_id", asset.ID.String(), "title", title)
	asset.LatestFile = file
	return asset, nil
}

func (s *assetService) Get(dbc dbctx.Context, id uuid.UUID) (*AssetDetail, error) {
	asset, err := s.lifecycle.SyncStatus(dbc, id)
	if err != nil {
		return nil, err
	}
	revisions, err := s.revisions.History(dbc, id)
	if err != nil {
		return nil, err
	}
	transitions, err := s.lifecycle.ListTransitions(dbc, id)
	if err != nil {
		return nil, err
	}
	return &AssetDetail{
		Asset:       asset,
		Revisions:   revisions,
		Transitions: transitions,
	}, nil
}

func (s *assetService) Update(dbc dbctx.Context, id uuid.UUID, in UpdateAssetInput) (*types.MarketingAsset, error) {
	asset, err := s.assets.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if asset == nil {
		return nil, apierr.NotFound("asset %s not found", id)
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apierr.Validation("asset title must not be empty")
		}
		updates["title"] = title
	}
	if in.Campaign != nil {
		updates["campaign"] = strings.TrimSpace(*in.Campaign)
	}
	if in.Category != nil {
		updates["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.ExpiryDate != nil {
		updates["expiry_date"] = *in.ExpiryDate
	}
	if len(updates) > 0 {
		if err := s.assets.UpdateFields(dbc, id, updates); err != nil {
			return nil, apierr.Internal(err)
		}
		s.audit.Record(dbc, types.DocTypeMarketingAsset, id, types.AuditActionModified, "Asset metadata updated")
	}

	asset, err = s.lifecycle.SyncStatus(dbc, id)
	if err != nil {
		return nil, err
	}
	// Privacy is re-checked on every save, not only on workflow transitions.
	if err := s.lifecycle.EnforceFileVisibility(dbc, asset); err != nil {
		s.log.Error("file visibility enforcement failed after save",
			"asset_id", asset.ID.String(), "err", err.Error())
	}
	return asset, nil
}

func (s *assetService) UploadRevision(dbc dbctx.Context, assetID uuid.UUID, file UploadInput, notes string) (*types.AssetRevision, error) {
	asset, err := s.assets.GetByID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if asset == nil {
		return nil, apierr.NotFound("asset %s not found", assetID)
	}

	file.Private = true
	file.AttachedToType = types.DocTypeAssetRevision
	stored, err := s.files.StoreUpload(dbc, file)
	if err != nil {
		return nil, err
	}
	return s.revisions.UploadNewRevision(dbc, assetID, stored.ID, notes)
}

func (s *assetService) SaveContentBrief(dbc dbctx.Context, assetID uuid.UUID, brief string) (*types.AssetRevision, error) {
	rev, err := s.revisions.SetContentBrief(dbc, assetID, brief)
	if err != nil {
		return nil, err
	}
	// Briefs are mention-scanned like annotation comments.
	s.notify.ProcessMentions(dbc, brief, types.DocTypeMarketingAsset, assetID,
		fmt.Sprintf("You were mentioned in the content brief of revision %d", rev.RevisionNumber))
	return rev, nil
}

func (s *assetService) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.MarketingAsset, error) {
	if projectID == uuid.Nil {
		return nil, apierr.Validation("missing project id")
	}
	rows, err := s.assets.ListByProjectID(dbc, projectID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}
