// Package handler exposes the quiz scoring and lead capture endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"growthscore_backend/internal/leads/service"
	"growthscore_backend/internal/leads/transport"
	"growthscore_backend/platform/httpkit"
	"growthscore_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the quiz surface.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new quiz lead handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Score computes a result for an answer set without storing anything.
// POST /api/v1/quiz/score
func (h *Handler) Score(c *gin.Context) {
	var req transport.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	httpkit.OK(c, h.svc.Score(req.Answers))
}

// SaveLead stores a quiz submission with its contact details.
// POST /api/v1/quiz/leads
func (h *Handler) SaveLead(c *gin.Context) {
	var req transport.SaveLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	httpkit.OK(c, h.svc.SaveLead(c.Request.Context(), req))
}
