// Package transport defines the request and response DTOs for the quiz lead
// endpoints.
package transport

import (
	"growthscore_backend/internal/quiz/scoring"
)

// ScoreRequest carries a raw answer set for stateless scoring.
type ScoreRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

// ScoreResponse returns the computed result without persisting anything.
type ScoreResponse struct {
	Result scoring.Result `json:"result"`
}

// SaveLeadRequest captures the contact details entered after the quiz plus
// the full answer set.
type SaveLeadRequest struct {
	FirstName string            `json:"firstName" validate:"required,max=100"`
	LastName  string            `json:"lastName" validate:"max=100"`
	Email     string            `json:"email" validate:"required,email,max=254"`
	Phone     string            `json:"phone" validate:"max=32"`
	Company   string            `json:"company" validate:"max=200"`
	Answers   map[string]string `json:"answers" validate:"required"`
}

// SaveLeadResponse reports the created lead and its score. Saved is false
// when persistence failed and LeadID holds a temporary placeholder so the
// caller can continue the flow.
type SaveLeadResponse struct {
	Success bool           `json:"success"`
	LeadID  string         `json:"leadId"`
	Saved   bool           `json:"saved"`
	Result  scoring.Result `json:"result"`
}
