package followup

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"growthscore_backend/internal/leads/repository"
	"growthscore_backend/platform/apperr"
	"growthscore_backend/platform/httpkit"
)

// Handler handles HTTP requests for the follow-up sequence.
type Handler struct {
	svc        *Service
	appBaseURL string
}

// NewHandler creates a new follow-up handler.
func NewHandler(svc *Service, appBaseURL string) *Handler {
	return &Handler{svc: svc, appBaseURL: appBaseURL}
}

// RunTick processes all due sequence emails. Invoked by the external cron
// trigger; authentication is handled by the cron middleware on the route
// group.
// POST /api/v1/quiz/follow-up/run
func (h *Handler) RunTick(c *gin.Context) {
	result, err := h.svc.Tick(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{
		"success":   true,
		"processed": result.Processed,
		"sent":      result.Sent,
		"failed":    result.Failed,
		"details":   result.Details,
	})
}

// EmailLog returns the delivery attempts recorded for a lead, for ops
// inspection of sequence state. Shares the cron group's key auth.
// GET /api/v1/cron/quiz/follow-up/log/:id
func (h *Handler) EmailLog(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return
	}

	entries, err := h.svc.EmailLog(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	if entries == nil {
		entries = []repository.EmailLogEntry{}
	}
	httpkit.OK(c, gin.H{"leadId": leadID, "entries": entries})
}

type unsubscribeRequest struct {
	Token string `json:"token" binding:"required"`
}

// Unsubscribe opts a lead out via the JSON API.
// POST /api/v1/quiz/unsubscribe
func (h *Handler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "unsubscribe token is required", nil)
		return
	}

	result, err := h.svc.Unsubscribe(c.Request.Context(), req.Token)
	if httpkit.HandleError(c, err) {
		return
	}

	message := "Successfully unsubscribed from follow-up emails"
	if result.AlreadyUnsubscribed {
		message = "Already unsubscribed"
	}
	httpkit.OK(c, gin.H{"success": true, "message": message})
}

// UnsubscribeLink handles one-click unsubscribe from the email footer and
// redirects to the public confirmation page.
// GET /api/v1/quiz/unsubscribe?token=...
func (h *Handler) UnsubscribeLink(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Redirect(http.StatusFound, h.appBaseURL+"/unsubscribe?error=missing_token")
		return
	}

	if _, err := h.svc.Unsubscribe(c.Request.Context(), token); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			c.Redirect(http.StatusFound, h.appBaseURL+"/unsubscribe?error=invalid_token")
			return
		}
		c.Redirect(http.StatusFound, h.appBaseURL+"/unsubscribe?error=server_error")
		return
	}

	c.Redirect(http.StatusFound, h.appBaseURL+"/unsubscribe?success=quiz")
}
