package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/data/repos"
	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/requestdata"
)

// LifecycleService drives assets through the review workflow and keeps the
// side effects honest: status mirrors workflow state, and the current file
// is public exactly when the asset is Approved.
type LifecycleService interface {
	ListTransitions(dbc dbctx.Context, assetID uuid.UUID) ([]Transition, error)
	ApplyTransition(dbc dbctx.Context, assetID uuid.UUID, action string) (*types.MarketingAsset, error)
	SyncStatus(dbc dbctx.Context, assetID uuid.UUID) (*types.MarketingAsset, error)
	EnforceFileVisibility(dbc dbctx.Context, asset *types.MarketingAsset) error
}

type lifecycleService struct {
	db     *gorm.DB
	log    *logger.Logger
	assets repos.AssetRepo
	engine WorkflowEngine
	files  FileService
	notify NotificationService
	audit  AuditService
}

func NewLifecycleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assets repos.AssetRepo,
	engine WorkflowEngine,
	files FileService,
	notify NotificationService,
	audit AuditService,
) LifecycleService {
	return &lifecycleService{
		db:     db,
		log:    baseLog.With("service", "LifecycleService"),
		assets: assets,
		engine: engine,
		files:  files,
		notify: notify,
		audit:  audit,
	}
}

func callerRole(dbc dbctx.Context) string {
	if rd := requestdata.GetRequestData(dbc.Ctx); rd != nil {
		return rd.Role
	}
	return ""
}

func (s *lifecycleService) ListTransitions(dbc dbctx.Context, assetID uuid.UUID) ([]Transition, error) {
	asset, err := s.assets.GetByID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if asset == nil {
		return nil, apierr.NotFound("asset %s not found", assetID)
	}
	state := asset.WorkflowState
	if strings.TrimSpace(state) == "" {
		state = asset.Status
	}
	return s.engine.ListTransitions(state, callerRole(dbc)), nil
}

func (s *lifecycleService) ApplyTransition(dbc dbctx.Context, assetID uuid.UUID, action string) (*types.MarketingAsset, error) {
	asset, err := s.assets.GetByID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if asset == nil {
		return nil, apierr.NotFound("asset %s not found", assetID)
	}

	state := asset.WorkflowState
	if strings.TrimSpace(state) == "" {
		state = asset.Status
	}

	t, err := s.engine.Apply(state, action, callerRole(dbc))
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"workflow_state": t.NextState,
		"status":         t.NextState,
	}
	if err := s.assets.UpdateFields(dbc, asset.ID, updates); err != nil {
		return nil, apierr.Internal(err)
	}
	asset.WorkflowState = t.NextState
	asset.Status = t.NextState

	s.audit.Record(dbc, types.DocTypeMarketingAsset, asset.ID, types.AuditActionWorkflow,
		fmt.Sprintf("%s: %s -> %s", t.Action, state, t.NextState))

	// Approval publishes the current file; every other state keeps or makes
	// it private again.
	if err := s.EnforceFileVisibility(dbc, asset); err != nil {
		s.log.Error("file visibility enforcement failed after transition",
			"asset_id", asset.ID.String(), "state", t.NextState, "err", err.Error())
	}
	if t.NextState == types.StatusFinalSignoff {
		// The file stays private until the sign-off lands; leave a trail so
		// nobody mistakes the wait for a publishing failure.
		s.audit.Record(dbc, types.DocTypeMarketingAsset, asset.ID, types.AuditActionComment,
			"Awaiting final sign-off; the file is published on approval")
	}

	s.notifyOwner(dbc, asset, t)

	s.log.Info("workflow transition applied",
		"asset_id", asset.ID.String(),
		"action", t.Action,
		"from", state,
		"to", t.NextState,
	)
	return asset, nil
}

func (s *lifecycleService) notifyOwner(dbc dbctx.Context, asset *types.MarketingAsset, t Transition) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd != nil && rd.UserID == asset.OwnerUserID {
		return
	}
	assetID := asset.ID
	subject := fmt.Sprintf("%q moved to %s", asset.Title, t.NextState)
	if _, err := s.notify.Notify(dbc, asset.OwnerUserID, types.NotificationKindWorkflow, subject, types.DocTypeMarketingAsset, &assetID); err != nil {
		s.log.Warn("owner notification failed", "asset_id", asset.ID.String(), "err", err.Error())
	}
}

// SyncStatus re-mirrors status from workflow state. Used after direct asset
// updates so the two columns never drift.
func (s *lifecycleService) SyncStatus(dbc dbctx.Context, assetID uuid.UUID) (*types.MarketingAsset, error) {
	asset, err := s.assets.GetByID(dbc, assetID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if asset == nil {
		return nil, apierr.NotFound("asset %s not found", assetID)
	}
	if strings.TrimSpace(asset.WorkflowState) == "" || asset.Status == asset.WorkflowState {
		return asset, nil
	}
	if err := s.assets.UpdateFields(dbc, asset.ID, map[string]interface{}{"status": asset.WorkflowState}); err != nil {
		return nil, apierr.Internal(err)
	}
	asset.Status = asset.WorkflowState
	return asset, nil
}

// EnforceFileVisibility moves the asset's current file into the bucket its
// status demands. Revision files are untouched; they stay private always.
func (s *lifecycleService) EnforceFileVisibility(dbc dbctx.Context, asset *types.MarketingAsset) error {
	if asset == nil || asset.LatestFileID == nil || *asset.LatestFileID == uuid.Nil {
		return nil
	}
	wantPrivate := asset.Status != types.StatusApproved

	file, err := s.files.SetVisibility(dbc.Ctx, *asset.LatestFileID, wantPrivate)
	if err != nil {
		return err
	}
	if !wantPrivate && file != nil {
		s.audit.Record(dbc, types.DocTypeMarketingAsset, asset.ID, types.AuditActionExport,
			fmt.Sprintf("Approved file published: %s", file.FileURL))
	}
	return nil
}
