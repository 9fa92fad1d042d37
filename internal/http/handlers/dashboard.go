package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brandlight/ims-backend/internal/http/response"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/services"
)

type DashboardHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		log:       log.With("handler", "DashboardHandler"),
		dashboard: dashboard,
	}
}

func intQuery(c *gin.Context, name string) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// GET /api/dashboard/summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, summary)
}

// GET /api/dashboard/assets?limit=N&status=S
func (h *DashboardHandler) RecentAssets(c *gin.Context) {
	assets, err := h.dashboard.RecentAssets(dbctx.Context{Ctx: c.Request.Context()}, intQuery(c, "limit"), c.Query("status"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assets": assets})
}

// GET /api/dashboard/uploads?limit=N
func (h *DashboardHandler) RecentUploads(c *gin.Context) {
	files, err := h.dashboard.RecentUploads(dbctx.Context{Ctx: c.Request.Context()}, intQuery(c, "limit"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"files": files})
}

// GET /api/search?q=...
func (h *DashboardHandler) Search(c *gin.Context) {
	results, err := h.dashboard.Search(dbctx.Context{Ctx: c.Request.Context()}, c.Query("q"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, results)
}

// GET /api/audit-logs?limit=N&action=A&document_type=T
func (h *DashboardHandler) AuditLogs(c *gin.Context) {
	var documentTypes []string
	if raw := strings.TrimSpace(c.Query("document_type")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				documentTypes = append(documentTypes, t)
			}
		}
	}
	events, err := h.dashboard.AuditLogs(dbctx.Context{Ctx: c.Request.Context()}, intQuery(c, "limit"), c.Query("action"), documentTypes)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": events})
}
