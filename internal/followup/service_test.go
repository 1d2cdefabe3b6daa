package followup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"growthscore_backend/internal/email"
	"growthscore_backend/internal/events"
	"growthscore_backend/internal/leads/repository"
	"growthscore_backend/platform/apperr"
	"growthscore_backend/platform/logger"
)

type fakeRepo struct {
	leads  map[uuid.UUID]*repository.Lead
	logged []repository.EmailLogParams
}

func newFakeRepo(leads ...*repository.Lead) *fakeRepo {
	r := &fakeRepo{leads: make(map[uuid.UUID]*repository.Lead)}
	for _, l := range leads {
		r.leads[l.ID] = l
	}
	return r
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return *l, nil
}

func (r *fakeRepo) GetByUnsubscribeToken(_ context.Context, token string) (repository.Lead, error) {
	for _, l := range r.leads {
		if l.UnsubscribeToken == token {
			return *l, nil
		}
	}
	return repository.Lead{}, apperr.NotFound("lead not found")
}

func (r *fakeRepo) ListDueFollowUps(_ context.Context, now time.Time, limit int) ([]repository.Lead, error) {
	var due []repository.Lead
	for _, l := range r.leads {
		if l.SequenceStartedAt == nil || l.UnsubscribedAt != nil {
			continue
		}
		if l.LastEmailSent >= email.SequenceLength || l.NextEmailDueAt == nil {
			continue
		}
		if l.NextEmailDueAt.After(now) {
			continue
		}
		due = append(due, *l)
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (r *fakeRepo) StartSequence(_ context.Context, id uuid.UUID, startedAt, nextDueAt time.Time) (bool, error) {
	l, ok := r.leads[id]
	if !ok || l.SequenceStartedAt != nil {
		return false, nil
	}
	l.SequenceStartedAt = &startedAt
	l.LastEmailSent = 0
	l.NextEmailDueAt = &nextDueAt
	return true, nil
}

func (r *fakeRepo) AdvanceSequence(_ context.Context, id uuid.UUID, fromEmail, toEmail int, nextDueAt *time.Time) (bool, error) {
	l, ok := r.leads[id]
	if !ok || l.LastEmailSent != fromEmail || l.UnsubscribedAt != nil {
		return false, nil
	}
	l.LastEmailSent = toEmail
	l.NextEmailDueAt = nextDueAt
	return true, nil
}

func (r *fakeRepo) Unsubscribe(_ context.Context, id uuid.UUID, at time.Time) error {
	l, ok := r.leads[id]
	if !ok {
		return nil
	}
	if l.UnsubscribedAt == nil {
		l.UnsubscribedAt = &at
	}
	l.NextEmailDueAt = nil
	return nil
}

func (r *fakeRepo) LogEmail(_ context.Context, params repository.EmailLogParams) error {
	r.logged = append(r.logged, params)
	return nil
}

func (r *fakeRepo) ListEmailLog(_ context.Context, leadID uuid.UUID) ([]repository.EmailLogEntry, error) {
	var entries []repository.EmailLogEntry
	for _, p := range r.logged {
		if p.LeadID != leadID {
			continue
		}
		entries = append(entries, repository.EmailLogEntry{
			ID:                uuid.New(),
			LeadID:            p.LeadID,
			EmailNumber:       p.EmailNumber,
			Recipient:         p.Recipient,
			Subject:           p.Subject,
			ProviderMessageID: p.ProviderMessageID,
			Success:           p.Success,
			Error:             p.Error,
		})
	}
	return entries, nil
}

type sentEmail struct {
	to     string
	number int
	data   email.FollowUpEmailData
}

type fakeSender struct {
	sent     []sentEmail
	failWith error
}

func (f *fakeSender) SendFollowUpEmail(_ context.Context, toEmail string, emailNumber int, data email.FollowUpEmailData) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	f.sent = append(f.sent, sentEmail{to: toEmail, number: emailNumber, data: data})
	return "msg-id", nil
}

func (f *fakeSender) SendLeadAlertEmail(_ context.Context, _ string, _ email.LeadAlertData) error {
	return nil
}

func (f *fakeSender) SendReportAlertEmail(_ context.Context, _ string, _ email.ReportAlertData) error {
	return nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event)           {}
func (nopBus) PublishSync(context.Context, events.Event) error { return nil }
func (nopBus) Subscribe(string, events.Handler)                {}

type fakeTicker struct {
	scheduled []time.Time
	failWith  error
}

func (f *fakeTicker) ScheduleFollowUpTick(_ context.Context, runAt time.Time) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.scheduled = append(f.scheduled, runAt)
	return nil
}

type testConfig struct{}

func (testConfig) GetAppBaseURL() string  { return "https://example.com" }
func (testConfig) GetCalendarURL() string { return "https://example.com/book" }

func newTestService(repo Repository, sender email.Sender, now time.Time) *Service {
	svc := NewService(repo, sender, nopBus{}, nil, testConfig{}, logger.New("development"))
	svc.pace = 0
	svc.now = func() time.Time { return now }
	return svc
}

func testLead(started bool) *repository.Lead {
	reportURL := "https://example.com/quiz/report/abc"
	l := &repository.Lead{
		ID:                uuid.New(),
		FirstName:         "Ada",
		Company:           "Acme Ltd",
		Email:             "ada@example.com",
		OverallPercentage: 44,
		Zone:              "CONSTRAINT",
		WeakestPillar:     "CONVERT",
		ReportURL:         &reportURL,
		UnsubscribeToken:  "tok-ada",
	}
	if started {
		startedAt := time.Now().Add(-48 * time.Hour)
		l.SequenceStartedAt = &startedAt
		l.LastEmailSent = 1
		due := time.Now().Add(-time.Hour)
		l.NextEmailDueAt = &due
	}
	return l
}

func TestStartSendsFirstEmailImmediately(t *testing.T) {
	lead := testLead(false)
	repo := newFakeRepo(lead)
	sender := &fakeSender{}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, sender, now)

	result, err := svc.Start(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !result.Started || result.AlreadyStarted {
		t.Fatalf("expected fresh start, got %+v", result)
	}
	if !result.FirstEmailSent {
		t.Fatal("expected first email to be sent")
	}
	if len(sender.sent) != 1 || sender.sent[0].number != 1 {
		t.Fatalf("expected email 1 sent once, got %+v", sender.sent)
	}

	if lead := repo.leads[lead.ID]; lead.LastEmailSent != 1 {
		t.Fatalf("expected cursor at 1, got %d", lead.LastEmailSent)
	}
	wantDue := now.AddDate(0, 0, 2)
	if got := repo.leads[lead.ID].NextEmailDueAt; got == nil || !got.Equal(wantDue) {
		t.Fatalf("expected next due %v, got %v", wantDue, got)
	}
}

func TestStartSchedulesPreciseTickForNextEmail(t *testing.T) {
	lead := testLead(false)
	repo := newFakeRepo(lead)
	ticker := &fakeTicker{}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &fakeSender{}, now)
	svc.ticker = ticker

	if _, err := svc.Start(context.Background(), lead.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(ticker.scheduled) != 1 {
		t.Fatalf("expected one scheduled tick, got %d", len(ticker.scheduled))
	}
	if want := now.AddDate(0, 0, 2); !ticker.scheduled[0].Equal(want) {
		t.Fatalf("expected tick at %v, got %v", want, ticker.scheduled[0])
	}
}

func TestSendSucceedsWhenTickSchedulingFails(t *testing.T) {
	lead := testLead(false)
	repo := newFakeRepo(lead)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &fakeSender{}, now)
	svc.ticker = &fakeTicker{failWith: errors.New("queue down")}

	result, err := svc.Start(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !result.FirstEmailSent {
		t.Fatal("expected send to succeed despite scheduling failure")
	}
	if repo.leads[lead.ID].LastEmailSent != 1 {
		t.Fatal("expected cursor advanced despite scheduling failure")
	}
}

func TestFinalEmailSchedulesNoTick(t *testing.T) {
	lead := testLead(true)
	lead.LastEmailSent = email.SequenceLength - 1
	repo := newFakeRepo(lead)
	ticker := &fakeTicker{}
	svc := newTestService(repo, &fakeSender{}, time.Now())
	svc.ticker = ticker

	if _, err := svc.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if repo.leads[lead.ID].LastEmailSent != email.SequenceLength {
		t.Fatal("expected final email sent")
	}
	if len(ticker.scheduled) != 0 {
		t.Fatalf("expected no tick after final email, got %v", ticker.scheduled)
	}
}

func TestEmailLogListsDeliveryAttempts(t *testing.T) {
	lead := testLead(false)
	repo := newFakeRepo(lead)
	svc := newTestService(repo, &fakeSender{}, time.Now())

	if _, err := svc.Start(context.Background(), lead.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	entries, err := svc.EmailLog(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("EmailLog: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].EmailNumber != 1 || entries[0].Recipient != lead.Email || !entries[0].Success {
		t.Fatalf("unexpected log entry %+v", entries[0])
	}

	if _, err := svc.EmailLog(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found for unknown lead, got %v", err)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	lead := testLead(false)
	repo := newFakeRepo(lead)
	sender := &fakeSender{}
	svc := newTestService(repo, sender, time.Now())

	if _, err := svc.Start(context.Background(), lead.ID); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	result, err := svc.Start(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if !result.AlreadyStarted || result.Started {
		t.Fatalf("expected already-started no-op, got %+v", result)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(sender.sent))
	}
}

func TestStartSkipsUnsubscribedLead(t *testing.T) {
	lead := testLead(false)
	at := time.Now()
	lead.UnsubscribedAt = &at
	repo := newFakeRepo(lead)
	sender := &fakeSender{}
	svc := newTestService(repo, sender, time.Now())

	result, err := svc.Start(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if result.Started || len(sender.sent) != 0 {
		t.Fatalf("unsubscribed lead must not be armed, got %+v with %d sends", result, len(sender.sent))
	}
}

func TestStartUnknownLead(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeSender{}, time.Now())

	_, err := svc.Start(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestTickSendsDueEmail(t *testing.T) {
	lead := testLead(true)
	now := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	started := now.Add(-48 * time.Hour)
	lead.SequenceStartedAt = &started
	due := now.Add(-time.Hour)
	lead.NextEmailDueAt = &due
	repo := newFakeRepo(lead)
	sender := &fakeSender{}
	svc := newTestService(repo, sender, now)

	result, err := svc.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if result.Processed != 1 || result.Sent != 1 || result.Failed != 0 {
		t.Fatalf("unexpected tick result: %+v", result)
	}
	if len(sender.sent) != 1 || sender.sent[0].number != 2 {
		t.Fatalf("expected email 2, got %+v", sender.sent)
	}

	// Email 2 to 3 is a one-day gap.
	wantDue := now.AddDate(0, 0, 1)
	if got := repo.leads[lead.ID].NextEmailDueAt; got == nil || !got.Equal(wantDue) {
		t.Fatalf("expected next due %v, got %v", wantDue, got)
	}
}

func TestTickSkipsNotYetDue(t *testing.T) {
	lead := testLead(true)
	due := time.Now().Add(24 * time.Hour)
	lead.NextEmailDueAt = &due
	repo := newFakeRepo(lead)
	sender := &fakeSender{}
	svc := newTestService(repo, sender, time.Now())

	result, err := svc.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if result.Processed != 0 || len(sender.sent) != 0 {
		t.Fatalf("expected nothing due, got %+v", result)
	}
}

func TestTickRetainsStateOnSendFailure(t *testing.T) {
	lead := testLead(true)
	originalDue := *lead.NextEmailDueAt
	repo := newFakeRepo(lead)
	sender := &fakeSender{failWith: errors.New("smtp down")}
	svc := newTestService(repo, sender, time.Now())

	result, err := svc.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if result.Failed != 1 || result.Sent != 0 {
		t.Fatalf("expected one failure, got %+v", result)
	}

	// Cursor and due time untouched, so the next tick retries email 2.
	stored := repo.leads[lead.ID]
	if stored.LastEmailSent != 1 {
		t.Fatalf("cursor must not advance on failure, got %d", stored.LastEmailSent)
	}
	if stored.NextEmailDueAt == nil || !stored.NextEmailDueAt.Equal(originalDue) {
		t.Fatalf("due time must not change on failure, got %v", stored.NextEmailDueAt)
	}

	// The failed attempt is still recorded.
	if len(repo.logged) != 1 || repo.logged[0].Success || repo.logged[0].Error == "" {
		t.Fatalf("expected one failed log entry, got %+v", repo.logged)
	}

	// Recovery: the provider comes back and the same email goes out.
	sender.failWith = nil
	result, err = svc.Tick(context.Background())
	if err != nil {
		t.Fatalf("retry Tick: %v", err)
	}
	if result.Sent != 1 || sender.sent[0].number != 2 {
		t.Fatalf("expected email 2 on retry, got %+v", result)
	}
}

func TestSequenceCompletesAfterFinalEmail(t *testing.T) {
	lead := testLead(true)
	lead.LastEmailSent = 3
	repo := newFakeRepo(lead)
	sender := &fakeSender{}
	svc := newTestService(repo, sender, time.Now())

	result, err := svc.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if result.Sent != 1 || sender.sent[0].number != 4 {
		t.Fatalf("expected email 4, got %+v", result)
	}

	stored := repo.leads[lead.ID]
	if stored.LastEmailSent != 4 {
		t.Fatalf("expected cursor at 4, got %d", stored.LastEmailSent)
	}
	if stored.NextEmailDueAt != nil {
		t.Fatalf("expected cleared due time after final email, got %v", stored.NextEmailDueAt)
	}

	// Terminal state: further ticks select nothing.
	result, err = svc.Tick(context.Background())
	if err != nil {
		t.Fatalf("post-completion Tick: %v", err)
	}
	if result.Processed != 0 {
		t.Fatalf("completed lead must not be selected, got %+v", result)
	}
}

func TestConcurrentCursorLosesAdvance(t *testing.T) {
	lead := testLead(true)
	repo := newFakeRepo(lead)
	sender := &fakeSender{}
	svc := newTestService(repo, sender, time.Now())

	// Simulate another tick winning between the due scan and the advance.
	stale := *lead
	repo.leads[lead.ID].LastEmailSent = 2

	if svc.sendNext(context.Background(), stale) {
		t.Fatal("losing worker must not report an advance")
	}
	if repo.leads[lead.ID].LastEmailSent != 2 {
		t.Fatalf("cursor clobbered by losing worker: %d", repo.leads[lead.ID].LastEmailSent)
	}
}

func TestUnsubscribeStopsSequence(t *testing.T) {
	lead := testLead(true)
	repo := newFakeRepo(lead)
	sender := &fakeSender{}
	svc := newTestService(repo, sender, time.Now())

	result, err := svc.Unsubscribe(context.Background(), "tok-ada")
	if err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if result.AlreadyUnsubscribed {
		t.Fatal("first unsubscribe must not report already-unsubscribed")
	}
	if repo.leads[lead.ID].UnsubscribedAt == nil {
		t.Fatal("expected unsubscribed timestamp")
	}
	if repo.leads[lead.ID].NextEmailDueAt != nil {
		t.Fatal("expected cleared due time")
	}

	// A due tick after unsubscribe sends nothing.
	tick, err := svc.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if tick.Processed != 0 || len(sender.sent) != 0 {
		t.Fatalf("unsubscribed lead was processed: %+v", tick)
	}

	// Repeating the call is a successful no-op.
	result, err = svc.Unsubscribe(context.Background(), "tok-ada")
	if err != nil {
		t.Fatalf("repeat Unsubscribe: %v", err)
	}
	if !result.AlreadyUnsubscribed {
		t.Fatal("expected already-unsubscribed on repeat")
	}
}

func TestUnsubscribeInvalidToken(t *testing.T) {
	svc := newTestService(newFakeRepo(testLead(true)), &fakeSender{}, time.Now())

	_, err := svc.Unsubscribe(context.Background(), "nope")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found for invalid token, got %v", err)
	}
}

func TestEmailDataPersonalization(t *testing.T) {
	lead := testLead(true)
	svc := newTestService(newFakeRepo(lead), &fakeSender{}, time.Now())

	data := svc.emailData(*lead)
	if data.FirstName != "Ada" || data.CompanyName != "Acme Ltd" {
		t.Fatalf("unexpected personalization: %+v", data)
	}
	if data.ZoneLabel != "Constraint Zone" {
		t.Fatalf("expected zone label, got %q", data.ZoneLabel)
	}
	if data.WeakestPillar != "Convert" {
		t.Fatalf("expected pillar display name, got %q", data.WeakestPillar)
	}
	if data.UnsubscribeURL != "https://example.com/api/v1/quiz/unsubscribe?token=tok-ada" {
		t.Fatalf("unexpected unsubscribe URL: %q", data.UnsubscribeURL)
	}

	// Fallbacks for sparse leads.
	lead.FirstName = ""
	lead.Company = ""
	data = svc.emailData(*lead)
	if data.FirstName != "there" || data.CompanyName != "your business" {
		t.Fatalf("unexpected fallbacks: %+v", data)
	}
}

func TestNextDueAfterGaps(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		sent    int
		wantDay int
	}{
		{1, 2},
		{2, 1},
		{3, 2},
	}
	for _, tc := range cases {
		got := nextDueAfter(tc.sent, base)
		if got == nil {
			t.Fatalf("nextDueAfter(%d) = nil", tc.sent)
		}
		if want := base.AddDate(0, 0, tc.wantDay); !got.Equal(want) {
			t.Errorf("nextDueAfter(%d) = %v, want %v", tc.sent, got, want)
		}
	}
	if got := nextDueAfter(4, base); got != nil {
		t.Errorf("nextDueAfter(4) = %v, want nil", got)
	}
}
