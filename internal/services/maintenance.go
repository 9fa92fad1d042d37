package services

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/data/repos"
	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

const fixFilesConcurrency = 8

// FixFilesReport summarizes one reconciliation run.
type FixFilesReport struct {
	Scanned int64 `json:"scanned"`
	Moved   int64 `json:"moved"`
	Failed  int64 `json:"failed"`
}

// MaintenanceService hosts the repair paths. FixAllFiles walks every stored
// file and forces its bucket placement back in line with its owning asset's
// status, healing drift left by crashed visibility moves.
type MaintenanceService interface {
	FixAllFiles(ctx context.Context) (*FixFilesReport, error)
}

type maintenanceService struct {
	db      *gorm.DB
	log     *logger.Logger
	files   repos.StoredFileRepo
	assets  repos.AssetRepo
	fileSvc FileService
}

func NewMaintenanceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	files repos.StoredFileRepo,
	assets repos.AssetRepo,
	fileSvc FileService,
) MaintenanceService {
	return &maintenanceService{
		db:      db,
		log:     baseLog.With("service", "MaintenanceService"),
		files:   files,
		assets:  assets,
		fileSvc: fileSvc,
	}
}

func (s *maintenanceService) FixAllFiles(ctx context.Context) (*FixFilesReport, error) {
	dbc := dbctx.Context{Ctx: ctx}

	rows, err := s.files.ListAll(dbc)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	// Only the current file of an Approved asset may be public.
	publicFileIDs := map[uuid.UUID]bool{}
	assets, err := s.assets.ListAll(dbc)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	for _, a := range assets {
		if a.Status == types.StatusApproved && a.LatestFileID != nil {
			publicFileIDs[*a.LatestFileID] = true
		}
	}

	var report FixFilesReport
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fixFilesConcurrency)

	for _, row := range rows {
		row := row
		atomic.AddInt64(&report.Scanned, 1)
		wantPrivate := !publicFileIDs[row.ID]
		if row.IsPrivate == wantPrivate {
			continue
		}
		g.Go(func() error {
			if _, err := s.fileSvc.SetVisibility(gctx, row.ID, wantPrivate); err != nil {
				atomic.AddInt64(&report.Failed, 1)
				s.log.Warn("file visibility repair failed",
					"file_id", row.ID.String(),
					"want_private", wantPrivate,
					"err", err.Error(),
				)
				// Keep repairing the rest; the report carries the failure.
				return nil
			}
			atomic.AddInt64(&report.Moved, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &report, apierr.Internal(err)
	}

	s.log.Info("file visibility reconciliation finished",
		"scanned", report.Scanned,
		"moved", report.Moved,
		"failed", report.Failed,
	)
	return &report, nil
}
