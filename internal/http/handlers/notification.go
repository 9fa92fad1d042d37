package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brandlight/ims-backend/internal/http/response"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/requestdata"
	"github.com/brandlight/ims-backend/internal/services"
)

type NotificationHandler struct {
	log           *logger.Logger
	notifications services.NotificationService
}

func NewNotificationHandler(log *logger.Logger, notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		log:           log.With("handler", "NotificationHandler"),
		notifications: notifications,
	}
}

// GET /api/notifications?limit=N
func (h *NotificationHandler) Feed(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	feed, err := h.notifications.ListForUser(dbctx.Context{Ctx: c.Request.Context()}, rd.UserID, intQuery(c, "limit"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, feed)
}

// POST /api/notifications/mark-read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := h.notifications.MarkAllRead(dbctx.Context{Ctx: c.Request.Context()}, rd.UserID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "ok"})
}

// GET /api/mention-candidates?q=...
func (h *NotificationHandler) MentionCandidates(c *gin.Context) {
	users, err := h.notifications.MentionCandidates(dbctx.Context{Ctx: c.Request.Context()}, c.Query("q"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}
