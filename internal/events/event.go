// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"growthscore_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a quiz submission produces a new lead.
type LeadCreated struct {
	BaseEvent
	LeadID            uuid.UUID `json:"leadId"`
	FirstName         string    `json:"firstName"`
	Email             string    `json:"email"`
	OverallPercentage int       `json:"overallPercentage"`
	Zone              string    `json:"zone"`
	WeakestPillar     string    `json:"weakestPillar"`
}

func (e LeadCreated) EventName() string { return "quiz.lead.created" }

// LeadUnsubscribed is published when a lead opts out of the follow-up
// sequence.
type LeadUnsubscribed struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Email  string    `json:"email"`
}

func (e LeadUnsubscribed) EventName() string { return "quiz.lead.unsubscribed" }

// =============================================================================
// Payment Domain Events
// =============================================================================

// ReportPurchased is published once a checkout session is verified as paid.
type ReportPurchased struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	SessionID string    `json:"sessionId"`
}

func (e ReportPurchased) EventName() string { return "quiz.report.purchased" }

// =============================================================================
// Report Domain Events
// =============================================================================

// ReportGenerated is published when a personalized report has been produced
// and persisted. The follow-up module starts the email sequence off this
// event.
type ReportGenerated struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	ReportURL   string    `json:"reportUrl"`
	GeneratedAt time.Time `json:"generatedAt"`
}

func (e ReportGenerated) EventName() string { return "quiz.report.generated" }

// =============================================================================
// Follow-up Domain Events
// =============================================================================

// FollowUpEmailSent is published after each successful follow-up delivery.
type FollowUpEmailSent struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	EmailNumber int       `json:"emailNumber"`
	Recipient   string    `json:"recipient"`
}

func (e FollowUpEmailSent) EventName() string { return "quiz.followup.email_sent" }
