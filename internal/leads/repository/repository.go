package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"growthscore_backend/platform/apperr"
)

const leadNotFoundMessage = "lead not found"

const leadColumns = `
	id, created_at, updated_at,
	first_name, last_name, email, phone, company,
	answers, overall_score, overall_max_score, overall_percentage, zone, weakest_pillar, pillar_scores,
	paid_at, stripe_session_id,
	report_generated_at, report_url, report_html,
	sequence_started_at, last_email_sent, next_email_due_at, unsubscribed_at, unsubscribe_token`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new lead repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create persists a new lead with its score snapshot.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Lead, error) {
	answersJSON, err := json.Marshal(params.Answers)
	if err != nil {
		return Lead{}, fmt.Errorf("marshal answers: %w", err)
	}
	pillarsJSON, err := json.Marshal(params.Result.PillarScores)
	if err != nil {
		return Lead{}, fmt.Errorf("marshal pillar scores: %w", err)
	}

	query := `
		INSERT INTO quiz_leads (
			id, first_name, last_name, email, phone, company,
			answers, overall_score, overall_max_score, overall_percentage, zone, weakest_pillar, pillar_scores,
			unsubscribe_token
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + leadColumns

	row := r.pool.QueryRow(ctx, query,
		uuid.New(), params.FirstName, params.LastName, params.Email, params.Phone, params.Company,
		answersJSON, params.Result.OverallScore, params.Result.OverallMaxScore, params.Result.OverallPercentage,
		string(params.Result.Zone), string(params.Result.WeakestPillar), pillarsJSON,
		params.UnsubscribeToken,
	)
	lead, err := scanLead(row)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

// GetByID retrieves a lead by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM quiz_leads WHERE id = $1`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// GetByUnsubscribeToken retrieves a lead by its unsubscribe token.
func (r *Repo) GetByUnsubscribeToken(ctx context.Context, token string) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM quiz_leads WHERE unsubscribe_token = $1`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by unsubscribe token: %w", err)
	}
	return lead, nil
}

// ListDueFollowUps retrieves leads whose next sequence email is due. Leads
// that unsubscribed or finished the sequence are excluded.
func (r *Repo) ListDueFollowUps(ctx context.Context, now time.Time, limit int) ([]Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM quiz_leads
		WHERE sequence_started_at IS NOT NULL
		  AND unsubscribed_at IS NULL
		  AND last_email_sent < 4
		  AND next_email_due_at IS NOT NULL
		  AND next_email_due_at <= $1
		ORDER BY next_email_due_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due follow-ups: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due follow-up: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due follow-ups: %w", err)
	}
	return leads, nil
}

// MarkPaid records a verified checkout session against the lead.
func (r *Repo) MarkPaid(ctx context.Context, id uuid.UUID, sessionID string, paidAt time.Time) error {
	query := `
		UPDATE quiz_leads
		SET paid_at = $2, stripe_session_id = $3, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, paidAt, sessionID)
	if err != nil {
		return fmt.Errorf("mark lead paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

// SaveReport persists the generated report document and its public URL.
func (r *Repo) SaveReport(ctx context.Context, id uuid.UUID, reportURL, reportHTML string, generatedAt time.Time) error {
	query := `
		UPDATE quiz_leads
		SET report_url = $2, report_html = $3, report_generated_at = $4, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, reportURL, reportHTML, generatedAt)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

// StartSequence arms the follow-up cadence if it has not been started yet.
func (r *Repo) StartSequence(ctx context.Context, id uuid.UUID, startedAt, nextDueAt time.Time) (bool, error) {
	query := `
		UPDATE quiz_leads
		SET sequence_started_at = $2, last_email_sent = 0, next_email_due_at = $3, updated_at = now()
		WHERE id = $1 AND sequence_started_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, startedAt, nextDueAt)
	if err != nil {
		return false, fmt.Errorf("start sequence: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AdvanceSequence moves the cadence cursor forward. The WHERE clause pins the
// current cursor value so only one of two racing workers can win, and an
// unsubscribe that landed mid-send keeps the cursor frozen.
func (r *Repo) AdvanceSequence(ctx context.Context, id uuid.UUID, fromEmail, toEmail int, nextDueAt *time.Time) (bool, error) {
	query := `
		UPDATE quiz_leads
		SET last_email_sent = $3, next_email_due_at = $4, updated_at = now()
		WHERE id = $1 AND last_email_sent = $2 AND unsubscribed_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, fromEmail, toEmail, nextDueAt)
	if err != nil {
		return false, fmt.Errorf("advance sequence: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Unsubscribe marks the lead as opted out and stops further scheduling.
func (r *Repo) Unsubscribe(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE quiz_leads
		SET unsubscribed_at = $2, next_email_due_at = NULL, updated_at = now()
		WHERE id = $1 AND unsubscribed_at IS NULL`

	if _, err := r.pool.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("unsubscribe lead: %w", err)
	}
	return nil
}

// LogEmail records a delivery attempt in the email log.
func (r *Repo) LogEmail(ctx context.Context, params EmailLogParams) error {
	query := `
		INSERT INTO quiz_email_log (id, lead_id, email_number, recipient, subject, provider_message_id, success, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		uuid.New(), params.LeadID, params.EmailNumber, params.Recipient, params.Subject,
		params.ProviderMessageID, params.Success, params.Error,
	)
	if err != nil {
		return fmt.Errorf("log email: %w", err)
	}
	return nil
}

// ListEmailLog retrieves the delivery attempts for a lead, oldest first.
func (r *Repo) ListEmailLog(ctx context.Context, leadID uuid.UUID) ([]EmailLogEntry, error) {
	query := `
		SELECT id, lead_id, email_number, recipient, subject, provider_message_id, success, error, sent_at
		FROM quiz_email_log
		WHERE lead_id = $1
		ORDER BY sent_at ASC`

	rows, err := r.pool.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("list email log: %w", err)
	}
	defer rows.Close()

	var entries []EmailLogEntry
	for rows.Next() {
		var e EmailLogEntry
		if err := rows.Scan(&e.ID, &e.LeadID, &e.EmailNumber, &e.Recipient, &e.Subject, &e.ProviderMessageID, &e.Success, &e.Error, &e.SentAt); err != nil {
			return nil, fmt.Errorf("scan email log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list email log: %w", err)
	}
	return entries, nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	var answersJSON, pillarsJSON []byte

	err := row.Scan(
		&l.ID, &l.CreatedAt, &l.UpdatedAt,
		&l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Company,
		&answersJSON, &l.OverallScore, &l.OverallMaxScore, &l.OverallPercentage, &l.Zone, &l.WeakestPillar, &pillarsJSON,
		&l.PaidAt, &l.StripeSessionID,
		&l.ReportGeneratedAt, &l.ReportURL, &l.ReportHTML,
		&l.SequenceStartedAt, &l.LastEmailSent, &l.NextEmailDueAt, &l.UnsubscribedAt, &l.UnsubscribeToken,
	)
	if err != nil {
		return Lead{}, err
	}

	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &l.Answers); err != nil {
			return Lead{}, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	if len(pillarsJSON) > 0 {
		if err := json.Unmarshal(pillarsJSON, &l.PillarScores); err != nil {
			return Lead{}, fmt.Errorf("unmarshal pillar scores: %w", err)
		}
	}
	return l, nil
}
