package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/http/response"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

type HealthHandler struct {
	log *logger.Logger
	db  *gorm.DB
}

func NewHealthHandler(log *logger.Logger, db *gorm.DB) *HealthHandler {
	return &HealthHandler{log: log.With("handler", "HealthHandler"), db: db}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "ok"
	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			dbStatus = "down"
		}
	}
	response.RespondOK(c, gin.H{"status": "ok", "db": dbStatus})
}
