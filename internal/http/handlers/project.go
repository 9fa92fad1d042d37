package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brandlight/ims-backend/internal/http/response"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/services"
)

type ProjectHandler struct {
	log      *logger.Logger
	projects services.ProjectService
	assets   services.AssetService
}

func NewProjectHandler(log *logger.Logger, projects services.ProjectService, assets services.AssetService) *ProjectHandler {
	return &ProjectHandler{
		log:      log.With("handler", "ProjectHandler"),
		projects: projects,
		assets:   assets,
	}
}

// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	project, err := h.projects.Create(dbctx.Context{Ctx: c.Request.Context()}, body.Title, body.Description)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"project": project})
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil || projectID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	detail, err := h.projects.Get(dbctx.Context{Ctx: c.Request.Context()}, projectID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// GET /api/projects/:id/assets
func (h *ProjectHandler) ListAssets(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil || projectID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	assets, err := h.assets.ListByProject(dbctx.Context{Ctx: c.Request.Context()}, projectID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assets": assets})
}
