// Package leads provides the quiz lead bounded context module.
package leads

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"growthscore_backend/internal/email"
	"growthscore_backend/internal/events"
	apphttp "growthscore_backend/internal/http"
	"growthscore_backend/internal/leads/handler"
	"growthscore_backend/internal/leads/repository"
	"growthscore_backend/internal/leads/service"
	"growthscore_backend/internal/quiz/catalog"
	"growthscore_backend/platform/config"
	"growthscore_backend/platform/logger"
	"growthscore_backend/platform/validator"
)

// Module is the quiz leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repo       *repository.Repo
	sender     email.Sender
	adminEmail string
	log        *logger.Logger
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, sender email.Sender, cfg config.EmailConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog.Default(), bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler:    h,
		service:    svc,
		repo:       repo,
		sender:     sender,
		adminEmail: cfg.GetAdminEmail(),
		log:        log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts quiz lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quiz := ctx.V1.Group("/quiz")
	quiz.POST("/score", m.handler.Score)
	quiz.POST("/leads", m.handler.SaveLead)
}

// RegisterHandlers subscribes to domain events for the admin notifications.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.ReportGenerated{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return m.notifyAdmin(ctx, e)
	case events.ReportGenerated:
		return m.notifyAdminReport(ctx, e)
	default:
		return nil
	}
}

func (m *Module) notifyAdmin(ctx context.Context, e events.LeadCreated) error {
	if m.adminEmail == "" {
		return nil
	}

	lead, err := m.repo.GetByID(ctx, e.LeadID)
	if err != nil {
		return err
	}

	err = m.sender.SendLeadAlertEmail(ctx, m.adminEmail, email.LeadAlertData{
		FirstName:         lead.FirstName,
		LastName:          lead.LastName,
		Email:             lead.Email,
		Phone:             lead.Phone,
		Company:           lead.Company,
		OverallPercentage: lead.OverallPercentage,
		ZoneLabel:         catalog.ZoneLabel(catalog.Zone(lead.Zone)),
		WeakestPillar:     lead.WeakestPillar,
	})
	m.log.EmailEvent("lead_alert", m.adminEmail, err == nil, errString(err))
	return err
}

func (m *Module) notifyAdminReport(ctx context.Context, e events.ReportGenerated) error {
	if m.adminEmail == "" {
		return nil
	}

	lead, err := m.repo.GetByID(ctx, e.LeadID)
	if err != nil {
		return err
	}

	err = m.sender.SendReportAlertEmail(ctx, m.adminEmail, email.ReportAlertData{
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Company:   lead.Company,
		ReportURL: e.ReportURL,
	})
	m.log.EmailEvent("report_alert", m.adminEmail, err == nil, errString(err))
	return err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
