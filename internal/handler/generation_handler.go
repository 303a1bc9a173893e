package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gstrone/internal/assemble"
	"gstrone/internal/csvexport"
	"gstrone/internal/service"
)

// GenerationHandler handles document generation and retrieval endpoints.
type GenerationHandler struct {
	svc service.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(svc service.GenerationService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

type generateRequest struct {
	GSTIN        string      `json:"gstin" binding:"required"`
	FilingPeriod string      `json:"filing_period" binding:"required"`
	UploadIDs    []uuid.UUID `json:"upload_ids" binding:"required"`
	NotifyEmail  string      `json:"notify_email"`
	NotifyName   string      `json:"notify_name"`
}

// Generate handles POST /filings/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	out, err := h.svc.Generate(c.Request.Context(), service.GenerateInput{
		GSTIN:        req.GSTIN,
		FilingPeriod: req.FilingPeriod,
		UploadIDs:    req.UploadIDs,
		NotifyEmail:  req.NotifyEmail,
		NotifyName:   req.NotifyName,
	})
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondCreated(c, out)
}

// GetByID handles GET /filings/:id
func (h *GenerationHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid filing id")
		return
	}

	filing, err := h.svc.GetFiling(c.Request.Context(), id)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondOK(c, filing)
}

// List handles GET /filings?gstin=...&period=MMYYYY
func (h *GenerationHandler) List(c *gin.Context) {
	gstin := c.Query("gstin")
	period := c.Query("period")
	if gstin == "" || period == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "gstin and period query parameters are required")
		return
	}

	filings, err := h.svc.ListFilings(c.Request.Context(), gstin, period)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondOK(c, filings)
}

// ExportB2CS handles GET /filings/:id/export/b2cs
func (h *GenerationHandler) ExportB2CS(c *gin.Context) {
	h.exportTable(c, "b2cs", func(w *csvexport.Writer, doc *assemble.Document) error {
		return w.WriteB2CS(doc.GSTR1.B2CS)
	})
}

// ExportDocIss handles GET /filings/:id/export/doc_iss
func (h *GenerationHandler) ExportDocIss(c *gin.Context) {
	h.exportTable(c, "doc_iss", func(w *csvexport.Writer, doc *assemble.Document) error {
		return w.WriteDocIss(doc.GSTR1.DocIss)
	})
}

func (h *GenerationHandler) exportTable(c *gin.Context, table string, write func(*csvexport.Writer, *assemble.Document) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid filing id")
		return
	}

	filing, err := h.svc.GetFiling(c.Request.Context(), id)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}

	var doc assemble.Document
	if err := json.Unmarshal(filing.Document, &doc); err != nil {
		RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "stored document is not readable")
		return
	}

	filename := csvexport.BuildFilename(table, filing.FilingPeriod)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := write(w, &doc); err != nil {
		return
	}
	w.Flush()
}
