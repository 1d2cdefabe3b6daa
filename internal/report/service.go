package report

import (
	"context"
	"fmt"
	"time"

	"growthscore_backend/internal/events"
	"growthscore_backend/internal/leads/repository"
	"growthscore_backend/platform/apperr"
	"growthscore_backend/platform/logger"

	"github.com/google/uuid"
)

// Repository is the slice of the lead store the report module needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	SaveReport(ctx context.Context, id uuid.UUID, reportURL, reportHTML string, generatedAt time.Time) error
}

// GenerateResult is returned from Generate.
type GenerateResult struct {
	LeadID           uuid.UUID `json:"leadId"`
	ReportURL        string    `json:"reportUrl"`
	AlreadyGenerated bool      `json:"alreadyGenerated"`
}

type Service struct {
	repo        Repository
	generator   TextGenerator
	cache       Cache
	bus         events.Bus
	log         *logger.Logger
	appBaseURL  string
	calendarURL string
	now         func() time.Time
}

func NewService(repo Repository, generator TextGenerator, cache Cache, bus events.Bus, appBaseURL, calendarURL string, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		generator:   generator,
		cache:       cache,
		bus:         bus,
		log:         log,
		appBaseURL:  appBaseURL,
		calendarURL: calendarURL,
		now:         time.Now,
	}
}

// Generate produces and persists the personalized report for a lead. A lead
// whose report already exists gets the stored URL back unchanged, so repeated
// verify-payment callbacks and page refreshes never burn another model call.
func (s *Service) Generate(ctx context.Context, leadID uuid.UUID) (GenerateResult, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return GenerateResult{}, err
	}

	if lead.ReportGeneratedAt != nil && lead.ReportURL != nil {
		return GenerateResult{LeadID: leadID, ReportURL: *lead.ReportURL, AlreadyGenerated: true}, nil
	}

	content, err := s.generator.GenerateText(ctx, buildPrompt(lead))
	if err != nil {
		s.log.UpstreamError("gemini", "generate report", err)
		return GenerateResult{}, err
	}

	parsed := Parse(content)
	html, err := renderReport(lead, parsed, s.calendarURL)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("render report for lead %s: %w", leadID, err)
	}

	generatedAt := s.now().UTC()
	reportURL := s.reportURL(leadID)
	if err := s.repo.SaveReport(ctx, leadID, reportURL, html, generatedAt); err != nil {
		return GenerateResult{}, fmt.Errorf("save report for lead %s: %w", leadID, err)
	}
	s.cache.Set(ctx, leadID.String(), html)

	s.bus.Publish(ctx, events.ReportGenerated{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      leadID,
		ReportURL:   reportURL,
		GeneratedAt: generatedAt,
	})

	s.log.Info("report generated", "lead_id", leadID.String(), "sections", len(parsed.SectionOrder), "recommendations", len(parsed.Recommendations))

	return GenerateResult{LeadID: leadID, ReportURL: reportURL}, nil
}

// GetReportHTML serves the stored report document, preferring the cache.
func (s *Service) GetReportHTML(ctx context.Context, leadID uuid.UUID) (string, error) {
	if html, ok := s.cache.Get(ctx, leadID.String()); ok {
		return html, nil
	}

	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return "", err
	}
	if lead.ReportHTML == nil || *lead.ReportHTML == "" {
		return "", apperr.NotFound("report not generated yet")
	}

	s.cache.Set(ctx, leadID.String(), *lead.ReportHTML)
	return *lead.ReportHTML, nil
}

func (s *Service) reportURL(leadID uuid.UUID) string {
	return s.appBaseURL + "/api/v1/quiz/report/" + leadID.String()
}
