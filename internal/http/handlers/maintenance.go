package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/brandlight/ims-backend/internal/http/response"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/services"
)

type MaintenanceHandler struct {
	log         *logger.Logger
	maintenance services.MaintenanceService
}

func NewMaintenanceHandler(log *logger.Logger, maintenance services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{
		log:         log.With("handler", "MaintenanceHandler"),
		maintenance: maintenance,
	}
}

// POST /api/maintenance/fix-files  (admin only)
func (h *MaintenanceHandler) FixAllFiles(c *gin.Context) {
	report, err := h.maintenance.FixAllFiles(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, report)
}
