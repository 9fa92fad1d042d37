package services

import (
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

// ProjectDetail bundles a project with its assets and a per-status rollup.
type ProjectDetail struct {
	Project      *types.Project          `json:"project"`
	Assets       []*types.MarketingAsset `json:"assets"`
	StatusCounts map[string]int          `json:"status_counts"`
}

type ProjectService interface {
	Create(dbc dbctx.Context, title, description string) (*types.Project, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*ProjectDetail, error)
}

type projectService struct {
	db       *gorm.DB
	log      *logger.Logger
	projects repos.ProjectRepo
	assets   repos.AssetRepo
	audit    AuditService
}

func NewProjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projects repos.ProjectRepo,
	assets repos.AssetRepo,
	audit AuditService,
) ProjectService {
	return &projectService{
		db:       db,
		log:      baseLog.With("service", "ProjectService"),
		projects: projects,
		assets:   assets,
		audit:    audit,
	}
}

func (s *projectService) Create(dbc dbctx.Context, title, description string) (*types.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.Validation("missing project title")
	}
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.PermissionDenied("authentication required")
	}

	row := &types.Project{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      types.ProjectStatusActive,
		OwnerUserID: rd.UserID,
	}
	if _, err := s.projects.Create(dbc, []*types.Project{row}); err != nil {
		return nil, apierr.Internal(err)
	}
	s.audit.Record(dbc, types.DocTypeProject, row.ID, types.AuditActionCreated, "Project created: "+title)
	return row, nil
}

func (s *projectService) Get(dbc dbctx.Context, id uuid.UUID) (*ProjectDetail, error) {
	project, err := s.projects.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if project == nil {
		return nil, apierr.NotFound("project %s not found", id)
	}

	assets, err := s.assets.ListByProjectID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	counts := map[string]int{}
	for _, a := range assets {
		status := a.Status
		if status == "" {
			status = types.StatusDraft
		}
		counts[status]++
	}
	return &ProjectDetail{
		Project:      project,
		Assets:       assets,
		StatusCounts: counts,
	}, nil
}
