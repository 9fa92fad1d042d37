package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/data/repos"
	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

const (
	maxListLimit     = 50
	unboundedListCap = 500
	maxSearchResults = 30
	maxAuditResults  = 100
)

// StatusSummary reports asset counts per workflow state. Each of the three
// review stages gets its own bucket so the dashboard can show where work
// is actually queued.
type StatusSummary struct {
	Total        int64 `json:"total"`
	Draft        int64 `json:"draft"`
	PeerReview   int64 `json:"peer_review"`
	HODApproval  int64 `json:"hod_approval"`
	FinalSignoff int64 `json:"final_signoff"`
	Approved     int64 `json:"approved"`
	Rejected     int64 `json:"rejected"`
}

// SearchResults is the cross-document search payload.
type SearchResults struct {
	Assets   []*types.MarketingAsset `json:"assets"`
	Projects []*types.Project        `json:"projects"`
}

type DashboardService interface {
	Summary(dbc dbctx.Context) (*StatusSummary, error)
	RecentAssets(dbc dbctx.Context, limit int, statusFilter string) ([]*types.MarketingAsset, error)
	RecentUploads(dbc dbctx.Context, limit int) ([]*types.StoredFile, error)
	Search(dbc dbctx.Context, query string) (*SearchResults, error)
	AuditLogs(dbc dbctx.Context, limit int, action string, documentTypes []string) ([]*types.AuditEvent, error)
}

type dashboardService struct {
	db       *gorm.DB
	log      *logger.Logger
	assets   repos.AssetRepo
	files    repos.StoredFileRepo
	projects repos.ProjectRepo
	audit    AuditService
}

func NewDashboardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assets repos.AssetRepo,
	files repos.StoredFileRepo,
	projects repos.ProjectRepo,
	audit AuditService,
) DashboardService {
	return &dashboardService{
		db:       db,
		log:      baseLog.With("service", "DashboardService"),
		assets:   assets,
		files:    files,
		projects: projects,
		audit:    audit,
	}
}

func (s *dashboardService) Summary(dbc dbctx.Context) (*StatusSummary, error) {
	counts, err := s.assets.CountByStatus(dbc)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	out := &StatusSummary{}
	for status, n := range counts {
		out.Total += n
		switch status {
		case types.StatusDraft:
			out.Draft += n
		case types.StatusPeerReview:
			out.PeerReview += n
		case types.StatusHODApproval:
			out.HODApproval += n
		case types.StatusFinalSignoff:
			out.FinalSignoff += n
		case types.StatusApproved:
			out.Approved += n
		case types.StatusRejected:
			out.Rejected += n
		default:
			// Unknown states count as drafts rather than vanishing.
			out.Draft += n
		}
	}
	return out, nil
}

// clampListLimit caps requested page sizes. A non-positive limit means "all",
// which still gets a hard ceiling so one call cannot drag the whole table.
func clampListLimit(limit int) int {
	if limit <= 0 {
		return unboundedListCap
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (s *dashboardService) RecentAssets(dbc dbctx.Context, limit int, statusFilter string) ([]*types.MarketingAsset, error) {
	var statuses []string
	switch strings.TrimSpace(statusFilter) {
	case "":
		// no filter
	case "In Review":
		statuses = types.ReviewStatuses
	default:
		statuses = []string{statusFilter}
	}
	rows, err := s.assets.ListRecent(dbc, clampListLimit(limit), statuses)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (s *dashboardService) RecentUploads(dbc dbctx.Context, limit int) ([]*types.StoredFile, error) {
	rows, err := s.files.ListRecentByAttachedType(dbc, types.DocTypeMarketingAsset, clampListLimit(limit))
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (s *dashboardService) Search(dbc dbctx.Context, query string) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &SearchResults{Assets: []*types.MarketingAsset{}, Projects: []*types.Project{}}, nil
	}

	assets, err := s.assets.SearchLike(dbc, query, maxSearchResults)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	projects, err := s.projects.SearchLike(dbc, query, maxSearchResults)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return &SearchResults{Assets: assets, Projects: projects}, nil
}

func (s *dashboardService) AuditLogs(dbc dbctx.Context, limit int, action string, documentTypes []string) ([]*types.AuditEvent, error) {
	if limit <= 0 || limit > maxAuditResults {
		limit = maxAuditResults
	}
	return s.audit.ListRecent(dbc, limit, action, documentTypes)
}
