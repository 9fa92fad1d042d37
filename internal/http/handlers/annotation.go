package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brandlight/ims-backend/internal/http/response"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/services"
)

type AnnotationHandler struct {
	log         *logger.Logger
	annotations services.AnnotationService
}

func NewAnnotationHandler(log *logger.Logger, annotations services.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{
		log:         log.With("handler", "AnnotationHandler"),
		annotations: annotations,
	}
}

// POST /api/assets/:id/annotations
func (h *AnnotationHandler) Add(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil || assetID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_asset_id", err)
		return
	}
	var in services.AnnotationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	ann, rev, err := h.annotations.Add(dbctx.Context{Ctx: c.Request.Context()}, assetID, in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"annotation":      ann,
		"revision_id":     rev.ID,
		"revision_number": rev.RevisionNumber,
	})
}

// GET /api/assets/:id/annotations?revision=N
func (h *AnnotationHandler) List(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil || assetID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_asset_id", err)
		return
	}
	var revisionNumber *int
	if raw := strings.TrimSpace(c.Query("revision")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.RespondError(c, http.StatusBadRequest, "invalid_revision_number", err)
			return
		}
		revisionNumber = &n
	}
	list, err := h.annotations.List(dbctx.Context{Ctx: c.Request.Context()}, assetID, revisionNumber)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, list)
}
