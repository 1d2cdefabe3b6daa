package report

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"growthscore_backend/platform/httpkit"
	"growthscore_backend/platform/validator"
)

// Handler handles HTTP requests for report generation and delivery.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a new report handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

type generateRequest struct {
	LeadID string `json:"leadId" validate:"required,uuid"`
}

// Generate produces the personalized report for a paid lead.
// POST /api/v1/quiz/report
func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "lead ID is required", err.Error())
		return
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Serve returns the stored report document as HTML.
// GET /api/v1/quiz/report/:id
func (h *Handler) Serve(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return
	}

	html, err := h.svc.GetReportHTML(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	// Reports never change after generation.
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
