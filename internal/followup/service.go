package followup

import (
	"context"
	"time"

	"github.com/google/uuid"

	"growthscore_backend/internal/email"
	"growthscore_backend/internal/events"
	"growthscore_backend/internal/leads/repository"
	"growthscore_backend/internal/quiz/catalog"
	"growthscore_backend/platform/config"
	"growthscore_backend/platform/logger"
)

// tickBatchSize caps how many due leads one tick processes.
const tickBatchSize = 500

// sendPace is the courtesy delay between sends within one tick, to stay
// under the email provider's rate limits.
const sendPace = 200 * time.Millisecond

// Repository is the subset of lead persistence the scheduler needs. It is
// satisfied by the leads module repository.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	GetByUnsubscribeToken(ctx context.Context, token string) (repository.Lead, error)
	ListDueFollowUps(ctx context.Context, now time.Time, limit int) ([]repository.Lead, error)
	StartSequence(ctx context.Context, id uuid.UUID, startedAt, nextDueAt time.Time) (bool, error)
	AdvanceSequence(ctx context.Context, id uuid.UUID, fromEmail, toEmail int, nextDueAt *time.Time) (bool, error)
	Unsubscribe(ctx context.Context, id uuid.UUID, at time.Time) error
	LogEmail(ctx context.Context, params repository.EmailLogParams) error
	ListEmailLog(ctx context.Context, leadID uuid.UUID) ([]repository.EmailLogEntry, error)
}

// TickScheduler enqueues a one-off due-email scan for a point in time.
// Satisfied by the scheduler task client; may be nil when no task queue is
// configured, in which case the periodic dispatcher alone drives sends.
type TickScheduler interface {
	ScheduleFollowUpTick(ctx context.Context, runAt time.Time) error
}

// Service drives the follow-up sequence state machine.
type Service struct {
	repo        Repository
	sender      email.Sender
	bus         events.Bus
	ticker      TickScheduler
	log         *logger.Logger
	appBaseURL  string
	calendarURL string
	pace        time.Duration
	now         func() time.Time
}

// NewService creates the follow-up scheduler service.
func NewService(repo Repository, sender email.Sender, bus events.Bus, ticker TickScheduler, cfg config.FollowUpConfig, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		sender:      sender,
		bus:         bus,
		ticker:      ticker,
		log:         log,
		appBaseURL:  cfg.GetAppBaseURL(),
		calendarURL: cfg.GetCalendarURL(),
		pace:        sendPace,
		now:         time.Now,
	}
}

// StartResult reports what a Start call did.
type StartResult struct {
	Started        bool `json:"started"`
	AlreadyStarted bool `json:"alreadyStarted"`
	FirstEmailSent bool `json:"firstEmailSent"`
}

// Start arms the sequence for a lead and sends email 1 immediately. Calling
// it again for an already-started lead is a successful no-op, so event
// redelivery and client retries are safe. Unsubscribed leads are never
// re-armed.
func (s *Service) Start(ctx context.Context, leadID uuid.UUID) (StartResult, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return StartResult{}, err
	}
	if lead.UnsubscribedAt != nil {
		return StartResult{AlreadyStarted: true}, nil
	}

	now := s.now()
	armed, err := s.repo.StartSequence(ctx, leadID, now, now)
	if err != nil {
		return StartResult{}, err
	}
	if !armed {
		return StartResult{AlreadyStarted: true}, nil
	}

	lead.SequenceStartedAt = &now
	lead.LastEmailSent = 0
	lead.NextEmailDueAt = &now

	sent := s.sendNext(ctx, lead)
	return StartResult{Started: true, FirstEmailSent: sent}, nil
}

// TickDetail describes one lead processed during a tick.
type TickDetail struct {
	LeadID      string `json:"leadId"`
	Email       string `json:"email"`
	EmailNumber int    `json:"emailNumber"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// TickResult summarizes one due-email scan.
type TickResult struct {
	Processed int          `json:"processed"`
	Sent      int          `json:"sent"`
	Failed    int          `json:"failed"`
	Details   []TickDetail `json:"details"`
}

// Tick scans for leads whose next email is due and sends it. A lead whose
// send fails keeps its state, so the same email is retried on the following
// tick. Lead order is immaterial; each transition is independent.
func (s *Service) Tick(ctx context.Context) (TickResult, error) {
	due, err := s.repo.ListDueFollowUps(ctx, s.now(), tickBatchSize)
	if err != nil {
		return TickResult{}, err
	}

	result := TickResult{Details: []TickDetail{}}
	for i, lead := range due {
		if i > 0 && s.pace > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.pace):
			}
		}

		result.Processed++
		detail := TickDetail{
			LeadID:      lead.ID.String(),
			Email:       lead.Email,
			EmailNumber: lead.LastEmailSent + 1,
		}
		if s.sendNext(ctx, lead) {
			result.Sent++
			detail.Status = "sent"
		} else {
			result.Failed++
			detail.Status = "failed"
		}
		result.Details = append(result.Details, detail)
	}
	return result, nil
}

// EmailLog returns the recorded delivery attempts for a lead, oldest first.
// Exposed on the ops surface for debugging sequence state.
func (s *Service) EmailLog(ctx context.Context, leadID uuid.UUID) ([]repository.EmailLogEntry, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return nil, err
	}
	return s.repo.ListEmailLog(ctx, leadID)
}

// UnsubscribeResult reports what an Unsubscribe call did.
type UnsubscribeResult struct {
	AlreadyUnsubscribed bool `json:"alreadyUnsubscribed"`
}

// Unsubscribe opts the lead out by token. Repeating the call is a successful
// no-op; an unknown token is a not-found error.
func (s *Service) Unsubscribe(ctx context.Context, token string) (UnsubscribeResult, error) {
	lead, err := s.repo.GetByUnsubscribeToken(ctx, token)
	if err != nil {
		return UnsubscribeResult{}, err
	}
	if lead.UnsubscribedAt != nil {
		return UnsubscribeResult{AlreadyUnsubscribed: true}, nil
	}

	if err := s.repo.Unsubscribe(ctx, lead.ID, s.now()); err != nil {
		return UnsubscribeResult{}, err
	}

	s.bus.Publish(ctx, events.LeadUnsubscribed{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Email:     lead.Email,
	})
	return UnsubscribeResult{}, nil
}

// sendNext delivers the lead's next sequence email and, on success, advances
// the cursor with a conditional update pinned to the current position. The
// conditional update means that of two racing ticks only one records the
// advance; send failure leaves the state untouched so the next tick retries.
func (s *Service) sendNext(ctx context.Context, lead repository.Lead) bool {
	n := lead.LastEmailSent + 1
	if n > email.SequenceLength || lead.UnsubscribedAt != nil {
		return false
	}

	subject := email.FollowUpSubject(n, firstNameOr(lead.FirstName))
	msgID, sendErr := s.sender.SendFollowUpEmail(ctx, lead.Email, n, s.emailData(lead))

	logErr := s.repo.LogEmail(ctx, repository.EmailLogParams{
		LeadID:            lead.ID,
		EmailNumber:       n,
		Recipient:         lead.Email,
		Subject:           subject,
		ProviderMessageID: msgID,
		Success:           sendErr == nil,
		Error:             errString(sendErr),
	})
	if logErr != nil {
		s.log.DatabaseError("log follow-up email", logErr)
	}

	s.log.EmailEvent("followup_sent", lead.Email, sendErr == nil, errString(sendErr))
	if sendErr != nil {
		return false
	}

	sentAt := s.now()
	nextDue := nextDueAfter(n, sentAt)
	advanced, err := s.repo.AdvanceSequence(ctx, lead.ID, lead.LastEmailSent, n, nextDue)
	if err != nil {
		s.log.DatabaseError("advance follow-up sequence", err)
		return false
	}
	if !advanced {
		s.log.Warn("follow-up cursor moved concurrently", "leadId", lead.ID, "emailNumber", n)
		return false
	}

	// Best effort: a precise tick means the next email goes out on time
	// instead of waiting for the periodic dispatcher, which remains the
	// safety net when enqueueing fails.
	if s.ticker != nil && nextDue != nil {
		if err := s.ticker.ScheduleFollowUpTick(ctx, *nextDue); err != nil {
			s.log.Warn("schedule follow-up tick", "leadId", lead.ID, "error", err)
		}
	}

	s.bus.Publish(ctx, events.FollowUpEmailSent{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		EmailNumber: n,
		Recipient:   lead.Email,
	})
	return true
}

func (s *Service) emailData(lead repository.Lead) email.FollowUpEmailData {
	reportURL := ""
	if lead.ReportURL != nil {
		reportURL = *lead.ReportURL
	}
	return email.FollowUpEmailData{
		FirstName:      firstNameOr(lead.FirstName),
		CompanyName:    companyOr(lead.Company),
		ReportURL:      reportURL,
		CalendarURL:    s.calendarURL,
		OverallScore:   lead.OverallPercentage,
		ZoneLabel:      catalog.ZoneLabel(catalog.Zone(lead.Zone)),
		WeakestPillar:  pillarName(lead.WeakestPillar),
		UnsubscribeURL: s.appBaseURL + "/api/v1/quiz/unsubscribe?token=" + lead.UnsubscribeToken,
	}
}

func pillarName(p string) string {
	if info, ok := catalog.Pillars()[catalog.Pillar(p)]; ok {
		return info.Name
	}
	return p
}

func firstNameOr(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

func companyOr(company string) string {
	if company == "" {
		return "your business"
	}
	return company
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
