package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"growthscore_backend/internal/events"
	"growthscore_backend/internal/leads/repository"
	"growthscore_backend/internal/quiz/scoring"
	"growthscore_backend/platform/apperr"
	"growthscore_backend/platform/logger"
)

type fakeRepo struct {
	leads map[uuid.UUID]*repository.Lead
	saves int
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

func (r *fakeRepo) SaveReport(_ context.Context, id uuid.UUID, reportURL, reportHTML string, generatedAt time.Time) error {
	l, ok := r.leads[id]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	r.saves++
	l.ReportURL = &reportURL
	l.ReportHTML = &reportHTML
	l.ReportGeneratedAt = &generatedAt
	return nil
}

type fakeGenerator struct {
	content string
	err     error
	calls   int
}

func (g *fakeGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.content, nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event)           {}
func (nopBus) PublishSync(context.Context, events.Event) error { return nil }
func (nopBus) Subscribe(string, events.Handler)                {}

const generatedReport = `SECTION: EXECUTIVE SUMMARY
Your business sits in the Constraint Zone with clear room to grow.

SECTION: YOUR PERSONALISED ACTION PLAN
RECOMMENDATION 1: Fix your follow-up
INVESTMENT: Low
TIMEFRAME: 14 days
WHAT TO DO: Respond to every lead the same day.
WHY IT WORKS: Speed wins deals.
EXPECTED OUTCOME: More booked calls.`

func testLead() *repository.Lead {
	return &repository.Lead{
		ID:                uuid.New(),
		FirstName:         "Ada",
		Company:           "Acme Ltd",
		OverallScore:      18,
		OverallMaxScore:   40,
		OverallPercentage: 45,
		Zone:              "CONSTRAINT",
		WeakestPillar:     "CONVERT",
		PillarScores: []scoring.PillarScore{
			{Pillar: "ATTRACT", Score: 6, MaxScore: 10, Percentage: 60},
			{Pillar: "CONVERT", Score: 2, MaxScore: 10, Percentage: 20},
			{Pillar: "ASCEND", Score: 5, MaxScore: 10, Percentage: 50},
			{Pillar: "ACCELERATE", Score: 5, MaxScore: 10, Percentage: 50},
		},
	}
}

func newTestService(repo Repository, gen TextGenerator) *Service {
	svc := NewService(repo, gen, noopCache{}, nopBus{}, "https://example.com", "https://example.com/book", logger.New("development"))
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestGeneratePersistsReport(t *testing.T) {
	lead := testLead()
	repo := newFakeRepo(lead)
	gen := &fakeGenerator{content: generatedReport}
	svc := newTestService(repo, gen)

	result, err := svc.Generate(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AlreadyGenerated {
		t.Fatal("first generation flagged as existing")
	}

	wantURL := "https://example.com/api/v1/quiz/report/" + lead.ID.String()
	if result.ReportURL != wantURL {
		t.Fatalf("unexpected report url %q", result.ReportURL)
	}
	if lead.ReportHTML == nil || lead.ReportGeneratedAt == nil {
		t.Fatal("report not persisted")
	}

	html := *lead.ReportHTML
	for _, want := range []string{"Ada", "Acme Ltd", "45%", "Constraint Zone", "Priority Focus", "Fix your follow-up", "https://example.com/book"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered report missing %q", want)
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	lead := testLead()
	repo := newFakeRepo(lead)
	gen := &fakeGenerator{content: generatedReport}
	svc := newTestService(repo, gen)

	first, err := svc.Generate(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Generate(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !second.AlreadyGenerated {
		t.Fatal("second generation should report existing")
	}
	if second.ReportURL != first.ReportURL {
		t.Fatalf("url changed between calls: %q vs %q", first.ReportURL, second.ReportURL)
	}
	if gen.calls != 1 {
		t.Fatalf("model called %d times, want 1", gen.calls)
	}
	if repo.saves != 1 {
		t.Fatalf("report saved %d times, want 1", repo.saves)
	}
}

func TestGenerateUnknownLead(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeGenerator{content: generatedReport})

	_, err := svc.Generate(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerateModelFailureDoesNotPersist(t *testing.T) {
	lead := testLead()
	repo := newFakeRepo(lead)
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	svc := newTestService(repo, gen)

	_, err := svc.Generate(context.Background(), lead.ID)
	if err == nil {
		t.Fatal("expected error")
	}
	if lead.ReportHTML != nil || repo.saves != 0 {
		t.Fatal("failed generation must not persist a report")
	}
}

func TestGetReportHTML(t *testing.T) {
	lead := testLead()
	repo := newFakeRepo(lead)
	svc := newTestService(repo, &fakeGenerator{content: generatedReport})

	_, err := svc.GetReportHTML(context.Background(), lead.ID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found before generation, got %v", err)
	}

	if _, err := svc.Generate(context.Background(), lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html, err := svc.GetReportHTML(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != *lead.ReportHTML {
		t.Fatal("served html differs from stored html")
	}
}
