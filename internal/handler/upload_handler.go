package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gstrone/internal/service"
)

// UploadHandler handles marketplace export upload endpoints.
type UploadHandler struct {
	svc service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(svc service.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Upload handles POST /uploads
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	uploads, err := h.svc.Upload(c.Request.Context(), service.UploadInput{File: file, Header: header})
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondCreated(c, uploads)
}

// GetByID handles GET /uploads/:id
func (h *UploadHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid upload id")
		return
	}

	upload, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondOK(c, upload)
}

// List handles GET /uploads
func (h *UploadHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	uploads, total, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondPaginated(c, uploads, PagMeta{Total: total, Offset: offset, Limit: limit})
}
