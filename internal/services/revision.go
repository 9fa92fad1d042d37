package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/data/repos"
	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/requestdata"
)

const initialRevisionNote = "Auto-created revision for first annotation."

// RevisionService governs the revision chain of an asset. Revision 1 is the
// protected baseline: once any later revision exists it is never written
// again. Edits that target an asset whose only revision is the baseline are
// redirected to a fresh revision that carries the baseline's content forward.
type RevisionService interface {
	CreateInitialRevision(dbc dbctx.Context, asset *types.MarketingAsset) (*types.AssetRevision, error)
	GetOrCreateWritableRevision(dbc dbctx.Context, assetID uuid.UUID) (*types.AssetRevision, error)
	UploadNewRevision(dbc dbctx.Context, assetID, fileID uuid.UUID, notes string) (*types.AssetRevision, error)
	SetContentBrief(dbc dbctx.Context, assetID uuid.UUID, brief string) (*types.AssetRevision, error)
	History(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetRevision, error)
	Latest(dbc dbctx.Context, assetID uuid.UUID) (*types.AssetRevision, error)
	GetByNumber(dbc dbctx.Context, assetID uuid.UUID, number int) (*types.AssetRevision, error)
}

type revisionService struct {
	db        *gorm.DB
	log       *logger.Logger
	assets    repos.AssetRepo
	revisions repos.RevisionRepo
	audit     AuditService
}

func NewRevisionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assets repos.AssetRepo,
	revisions repos.RevisionRepo,
	audit AuditService,
) RevisionService {
	return &revisionService{
		db:        db,
		log:       baseLog.With("service", "RevisionService"),
		assets:    assets,
		revisions: revisions,
		audit:     audit,
	}
}

func currentUserID(dbc dbctx.Context) uuid.UUID {
	if rd := requestdata.GetRequestData(dbc.Ctx); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}

func (s *revisionService) CreateInitialRevision(dbc dbctx.Context, asset *types.MarketingAsset) (*types.AssetRevision, error) {
	if asset == nil {
		return nil, apierr.Validation("missing asset")
	}
	if asset.LatestFileID == nil || *asset.LatestFileID == uuid.Nil {
		return nil, apierr.PreconditionFailed("asset %s has no file to base a revision on", asset.ID)
	}

	existing, err := s.revisions.GetLatestByAssetID(dbc, asset.ID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if existing != nil {
		return existing, nil
	}

	row := &types.AssetRevision{
		ID:               uuid.New(),
		MarketingAssetID: asset.ID,
		RevisionNumber:   1,
		RevisionFileID:   *asset.LatestFileID,
		Annotations:      datatypes.JSON(`[]`),
		ContentBrief:     asset.Description,
		RevisionNotes:    initialRevisionNote,
		CreatedByUserID:  currentUserID(dbc),
	}
	if _, err := s.revisions.Create(dbc, []*types.AssetRevision{row}); err != nil {
		return nil, apierr.Internal(err)
	}
	// Re-point unconditionally so the parent's file pointer self-heals.
	if err := s.assets.UpdateFields(dbc, asset.ID, map[string]interface{}{"latest_file_id": row.RevisionFileID}); err != nil {
		return nil, apierr.Internal(err)
	}
	s.audit.Record(dbc, types.DocTypeAssetRevision, row.ID, types.AuditActionCreated,
		fmt.Sprintf("Revision 1 created for asset %s", asset.ID))
	s.log.Info("initial revision created", "asset_id", asset.ID.String(), "revision_id", row.ID.String())
	return row, nil
}

// GetOrCreateWritableRevision returns the revision that edits should land
// in. No revisions yet means the baseline is created and returned; if the
// latest revision is still the baseline, a second revision is branched off
// it carrying the file, annotations and brief forward.
func (s *revisionService) GetOrCreateWritableRevision(dbc dbctx.Context, assetID uuid.UUID) (*types.AssetRevision, error) {
	asset, err := s.assets.GetByID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if asset == nil {
		return nil, apierr.NotFound("asset %s not found", assetID)
	}

	latest, err := s.revisions.GetLatestByAssetID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if latest == nil {
		return s.CreateInitialRevision(dbc, asset)
	}
	if latest.RevisionNumber > 1 {
		return latest, nil
	}
	return s.branchFromBaseline(dbc, asset, latest)
}

func (s *revisionService) branchFromBaseline(dbc dbctx.Context, asset *types.MarketingAsset, baseline *types.AssetRevision) (*types.AssetRevision, error) {
	annotations := baseline.Annotations
	if len(annotations) == 0 {
		annotations = datatypes.JSON(`[]`)
	}
	row := &types.AssetRevision{
		ID:               uuid.New(),
		MarketingAssetID: asset.ID,
		RevisionNumber:   baseline.RevisionNumber + 1,
		RevisionFileID:   baseline.RevisionFileID,
		Annotations:      annotations,
		ContentBrief:     baseline.ContentBrief,
		RevisionNotes:    fmt.Sprintf("Branched from revision %d", baseline.RevisionNumber),
		CreatedByUserID:  currentUserID(dbc),
	}
	if _, err := s.revisions.Create(dbc, []*types.AssetRevision{row}); err != nil {
		return nil, apierr.Internal(err)
	}
	if err := s.assets.UpdateFields(dbc, asset.ID, map[string]interface{}{"latest_file_id": row.RevisionFileID}); err != nil {
		return nil, apierr.Internal(err)
	}
	s.audit.Record(dbc, types.DocTypeAssetRevision, row.ID, types.AuditActionCreated,
		fmt.Sprintf("Revision %d branched from baseline for asset %s", row.RevisionNumber, asset.ID))
	s.log.Info("baseline branched",
		"asset_id", asset.ID.String(),
		"revision_id", row.ID.String(),
		"revision_number", row.RevisionNumber,
	)
	return row, nil
}

func (s *revisionService) UploadNewRevision(dbc dbctx.Context, assetID, fileID uuid.UUID, notes string) (*types.AssetRevision, error) {
	if fileID == uuid.Nil {
		return nil, apierr.Validation("missing revision file")
	}
	asset, err := s.assets.GetByID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if asset == nil {
		return nil, apierr.NotFound("asset %s not found", assetID)
	}

	max, err := s.revisions.MaxRevisionNumber(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	brief := asset.Description
	if latest, err := s.revisions.GetLatestByAssetID(dbc, assetID); err == nil && latest != nil {
		brief = latest.ContentBrief
	}

	row := &types.AssetRevision{
		ID:               uuid.New(),
		MarketingAssetID: assetID,
		RevisionNumber:   max + 1,
		RevisionFileID:   fileID,
		Annotations:      datatypes.JSON(`[]`),
		ContentBrief:     brief,
		RevisionNotes:    notes,
		CreatedByUserID:  currentUserID(dbc),
	}
	if _, err := s.revisions.Create(dbc, []*types.AssetRevision{row}); err != nil {
		return nil, apierr.Internal(err)
	}

	// The asset's current file and description follow the newest revision.
	if err := s.assets.UpdateFields(dbc, assetID, map[string]interface{}{
		"latest_file_id": fileID,
		"description":    brief,
	}); err != nil {
		return nil, apierr.Internal(err)
	}

	s.audit.Record(dbc, types.DocTypeMarketingAsset, assetID, types.AuditActionModified,
		fmt.Sprintf("Revision %d uploaded", row.RevisionNumber))
	s.log.Info("revision uploaded",
		"asset_id", assetID.String(),
		"revision_id", row.ID.String(),
		"revision_number", row.RevisionNumber,
	)
	return row, nil
}

func (s *revisionService) SetContentBrief(dbc dbctx.Context, assetID uuid.UUID, brief string) (*types.AssetRevision, error) {
	rev, err := s.GetOrCreateWritableRevision(dbc, assetID)
	if err != nil {
		return nil, err
	}
	if err := s.revisions.UpdateFields(dbc, rev.ID, map[string]interface{}{"content_brief": brief}); err != nil {
		return nil, apierr.Internal(err)
	}
	// Mirror the brief onto the asset so list views stay current.
	if err := s.assets.UpdateFields(dbc, assetID, map[string]interface{}{"description": brief}); err != nil {
		return nil, apierr.Internal(err)
	}
	rev.ContentBrief = brief
	return rev, nil
}

func (s *revisionService) History(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetRevision, error) {
	asset, err := s.assets.GetByID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if asset == nil {
		return nil, apierr.NotFound("asset %s not found", assetID)
	}
	rows, err := s.revisions.ListByAssetID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (s *revisionService) Latest(dbc dbctx.Context, assetID uuid.UUID) (*types.AssetRevision, error) {
	rev, err := s.revisions.GetLatestByAssetID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rev, nil
}

func (s *revisionService) GetByNumber(dbc dbctx.Context, assetID uuid.UUID, number int) (*types.AssetRevision, error) {
	if number < 1 {
		return nil, apierr.Validation("revision number must be positive")
	}
	rev, err := s.revisions.GetByAssetAndNumber(dbc, assetID, number)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if rev == nil {
		return nil, apierr.NotFound("asset %s has no revision %d", assetID, number)
	}
	return rev, nil
}
