package payments

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"growthscore_backend/platform/httpkit"
	"growthscore_backend/platform/validator"
)

// Handler handles HTTP requests for report purchases.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a new payments handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

type checkoutRequest struct {
	LeadID string `json:"leadId" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name"`
}

// CreateCheckout opens a payment session for the report.
// POST /api/v1/quiz/checkout
func (h *Handler) CreateCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "lead ID and email are required", err.Error())
		return
	}

	result, err := h.svc.CreateCheckout(c.Request.Context(), req.LeadID, req.Email, req.Name)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

type verifyRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// VerifyPayment confirms a completed checkout session.
// POST /api/v1/quiz/verify-payment
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "session ID is required", err.Error())
		return
	}

	result, err := h.svc.VerifyPayment(c.Request.Context(), req.SessionID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
