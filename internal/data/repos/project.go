package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

type ProjectRepo interface {
	Create(dbc dbctx.Context, projects []*types.Project) ([]*types.Project, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error)
	SearchLike(dbc dbctx.Context, query string, limit int) ([]*types.Project, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(dbc dbctx.Context, projects []*types.Project) ([]*types.Project, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(projects) == 0 {
		return []*types.Project{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var project types.Project
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == uuid.Nil {
		return nil, nil
	}
	return &project, nil
}

func (r *projectRepo) SearchLike(dbc dbctx.Context, query string, limit int) ([]*types.Project, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Project
	if query == "" {
		return out, nil
	}
	like := "%" + query + "%"
	q := transaction.WithContext(dbc.Ctx).
		Where("title ILIKE ? OR description ILIKE ? OR id::text ILIKE ?", like, like, like).
		Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
