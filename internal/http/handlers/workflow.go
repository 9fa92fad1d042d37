package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brandlight/ims-backend/internal/http/response"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/services"
)

type WorkflowHandler struct {
	log       *logger.Logger
	lifecycle services.LifecycleService
}

func NewWorkflowHandler(log *logger.Logger, lifecycle services.LifecycleService) *WorkflowHandler {
	return &WorkflowHandler{
		log:       log.With("handler", "WorkflowHandler"),
		lifecycle: lifecycle,
	}
}

// GET /api/assets/:id/transitions
func (h *WorkflowHandler) ListTransitions(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil || assetID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_asset_id", err)
		return
	}
	transitions, err := h.lifecycle.ListTransitions(dbctx.Context{Ctx: c.Request.Context()}, assetID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"transitions": transitions})
}

// POST /api/assets/:id/transitions
func (h *WorkflowHandler) ApplyTransition(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil || assetID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_asset_id", err)
		return
	}
	var body struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	asset, err := h.lifecycle.ApplyTransition(dbc, assetID, body.Action)
	if err != nil {
		ae := apierr.From(err)
		// A rejected transition is a result, not a transport failure; the
		// review UI surfaces the message inline.
		if ae.Code == "invalid_transition" || ae.Code == "permission_denied" {
			response.RespondOK(c, gin.H{"status": "error", "message": ae.Error()})
			return
		}
		response.RespondAPIError(c, err)
		return
	}

	next, err := h.lifecycle.ListTransitions(dbc, assetID)
	if err != nil {
		h.log.Warn("listing next transitions failed", "asset_id", assetID.String(), "err", err.Error())
		next = []services.Transition{}
	}
	response.RespondOK(c, gin.H{
		"status":           "success",
		"asset":            asset,
		"next_transitions": next,
	})
}
