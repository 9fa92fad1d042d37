package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/http/response"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/services"
)

type AssetHandler struct {
	log    *logger.Logger
	assets services.AssetService
	files  services.FileService
}

func NewAssetHandler(log *logger.Logger, assets services.AssetService, files services.FileService) *AssetHandler {
	return &AssetHandler{
		log:    log.With("handler", "AssetHandler"),
		assets: assets,
		files:  files,
	}
}

func uploadFromForm(header *multipart.FileHeader) (services.UploadInput, io.Closer, error) {
	f, err := header.Open()
	if err != nil {
		return services.UploadInput{}, nil, err
	}
	return services.UploadInput{
		FileName:  header.Filename,
		MimeType:  header.Header.Get("Content-Type"),
		SizeBytes: header.Size,
		Body:      f,
	}, f, nil
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// POST /api/assets  (multipart: file + metadata fields)
func (h *AssetHandler) Create(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	upload, closer, err := uploadFromForm(header)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer closer.Close()

	in := services.CreateAssetInput{
		Title:       c.PostForm("title"),
		Campaign:    c.PostForm("campaign"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		ExpiryDate:  parseDate(c.PostForm("expiry_date")),
		File:        upload,
	}
	if raw := strings.TrimSpace(c.PostForm("project_id")); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
			return
		}
		in.ProjectID = &projectID
	}

	asset, err := h.assets.Create(dbctx.Context{Ctx: c.Request.Context()}, in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"asset": asset})
}

// GET /api/assets/:id
func (h *AssetHandler) Get(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil || assetID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_asset_id", err)
		return
	}
	detail, err := h.assets.Get(dbctx.Context{Ctx: c.Request.Context()}, assetID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// PATCH /api/assets/:id
func (h *AssetHandler) Update(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil || assetID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_asset_id", err)
		return
	}
	var body struct {
		Title       *string `json:"title"`
		Campaign    *string `json:"campaign"`
		Category    *string `json:"category"`
		Description *string `json:"description"`
		ExpiryDate  *string `json:"expiry_date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	in := services.UpdateAssetInput{
		Title:       body.Title,
		Campaign:    body.Campaign,
		Category:    body.Category,
		Description: body.Description,
	}
	if body.ExpiryDate != nil {
		in.ExpiryDate = parseDate(*body.ExpiryDate)
	}
	asset, err := h.assets.Update(dbctx.Context{Ctx: c.Request.Context()}, assetID, in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"asset": asset})
}

// POST /api/assets/:id/revisions  (multipart: file + notes)
func (h *AssetHandler) UploadRevision(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil || assetID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_asset_id", err)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	upload, closer, err := uploadFromForm(header)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer closer.Close()

	rev, err := h.assets.UploadRevision(dbctx.Context{Ctx: c.Request.Context()}, assetID, upload, c.PostForm("notes"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"revision": rev})
}

// GET /api/assets/:id/revisions
func (h *AssetHandler) ListRevisions(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil || assetID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_asset_id", err)
		return
	}
	detail, err := h.assets.Get(dbctx.Context{Ctx: c.Request.Context()}, assetID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	history := make([]gin.H, 0, len(detail.Revisions))
	for _, rev := range detail.Revisions {
		count := 0
		if list, err := types.DecodeAnnotations(rev.Annotations); err == nil {
			count = len(list)
		}
		history = append(history, gin.H{
			"revision":         rev,
			"annotation_count": count,
		})
	}
	response.RespondOK(c, gin.H{"revisions": history})
}

// PUT /api/assets/:id/brief
func (h *AssetHandler) SaveContentBrief(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil || assetID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_asset_id", err)
		return
	}
	var body struct {
		ContentBrief string `json:"content_brief"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	rev, err := h.assets.SaveContentBrief(dbctx.Context{Ctx: c.Request.Context()}, assetID, body.ContentBrief)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"revision": rev})
}

// GET /api/files/:id/download
func (h *AssetHandler) DownloadFile(c *gin.Context) {
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil || fileID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file_id", err)
		return
	}
	rc, file, err := h.files.Open(c.Request.Context(), fileID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	defer rc.Close()

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.DataFromReader(http.StatusOK, file.SizeBytes, contentType, rc, nil)
}
