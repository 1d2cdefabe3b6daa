package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"growthscore_backend/internal/quiz/scoring"
)

// Lead is a quiz submission with its denormalized score snapshot and the
// follow-up sequence state.
type Lead struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	Company   string `db:"company"`

	Answers           map[string]string     `db:"answers"`
	OverallScore      int                   `db:"overall_score"`
	OverallMaxScore   int                   `db:"overall_max_score"`
	OverallPercentage int                   `db:"overall_percentage"`
	Zone              string                `db:"zone"`
	WeakestPillar     string                `db:"weakest_pillar"`
	PillarScores      []scoring.PillarScore `db:"pillar_scores"`

	PaidAt          *time.Time `db:"paid_at"`
	StripeSessionID *string    `db:"stripe_session_id"`

	ReportGeneratedAt *time.Time `db:"report_generated_at"`
	ReportURL         *string    `db:"report_url"`
	ReportHTML        *string    `db:"report_html"`

	SequenceStartedAt *time.Time `db:"sequence_started_at"`
	LastEmailSent     int        `db:"last_email_sent"`
	NextEmailDueAt    *time.Time `db:"next_email_due_at"`
	UnsubscribedAt    *time.Time `db:"unsubscribed_at"`
	UnsubscribeToken  string     `db:"unsubscribe_token"`
}

// CreateParams contains parameters for persisting a new lead.
type CreateParams struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Company          string
	Answers          map[string]string
	Result           scoring.Result
	UnsubscribeToken string
}

// EmailLogParams records a single follow-up delivery attempt.
type EmailLogParams struct {
	LeadID            uuid.UUID
	EmailNumber       int
	Recipient         string
	Subject           string
	ProviderMessageID string
	Success           bool
	Error             string
}

// EmailLogEntry is one recorded delivery attempt.
type EmailLogEntry struct {
	ID                uuid.UUID `db:"id" json:"id"`
	LeadID            uuid.UUID `db:"lead_id" json:"leadId"`
	EmailNumber       int       `db:"email_number" json:"emailNumber"`
	Recipient         string    `db:"recipient" json:"recipient"`
	Subject           string    `db:"subject" json:"subject"`
	ProviderMessageID string    `db:"provider_message_id" json:"providerMessageId"`
	Success           bool      `db:"success" json:"success"`
	Error             string    `db:"error" json:"error,omitempty"`
	SentAt            time.Time `db:"sent_at" json:"sentAt"`
}

// LeadReader provides read operations for leads.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	GetByUnsubscribeToken(ctx context.Context, token string) (Lead, error)
	ListDueFollowUps(ctx context.Context, now time.Time, limit int) ([]Lead, error)
	ListEmailLog(ctx context.Context, leadID uuid.UUID) ([]EmailLogEntry, error)
}

// LeadWriter provides write operations for leads.
type LeadWriter interface {
	Create(ctx context.Context, params CreateParams) (Lead, error)
	MarkPaid(ctx context.Context, id uuid.UUID, sessionID string, paidAt time.Time) error
	SaveReport(ctx context.Context, id uuid.UUID, reportURL, reportHTML string, generatedAt time.Time) error

	// StartSequence arms the follow-up cadence. The update is conditional on
	// the sequence not having started; it reports whether this call armed it.
	StartSequence(ctx context.Context, id uuid.UUID, startedAt, nextDueAt time.Time) (bool, error)

	// AdvanceSequence moves the cursor from fromEmail to toEmail and sets
	// the next due time (nil after the final email). The update is
	// conditional on the current cursor so concurrent ticks cannot
	// double-send; it reports whether this call won.
	AdvanceSequence(ctx context.Context, id uuid.UUID, fromEmail, toEmail int, nextDueAt *time.Time) (bool, error)

	Unsubscribe(ctx context.Context, id uuid.UUID, at time.Time) error
	LogEmail(ctx context.Context, params EmailLogParams) error
}

// Repository combines all lead repository operations.
type Repository interface {
	LeadReader
	LeadWriter
}
