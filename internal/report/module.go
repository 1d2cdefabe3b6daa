package report

import (
	"context"

	"growthscore_backend/internal/events"
	apphttp "growthscore_backend/internal/http"
	"growthscore_backend/platform/config"
	"growthscore_backend/platform/logger"
	"growthscore_backend/platform/validator"
)

// Module is the report bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
	log     *logger.Logger
}

// NewModule creates and initializes the report module.
func NewModule(repo Repository, generator TextGenerator, cache Cache, bus events.Bus, cfg config.ReportConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(repo, generator, cache, bus, cfg.GetAppBaseURL(), cfg.GetCalendarURL(), log)
	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "report"
}

// Service returns the service layer for external use.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts report routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quiz := ctx.V1.Group("/quiz")
	quiz.POST("/report", m.handler.Generate)
	quiz.GET("/report/:id", m.handler.Serve)
}

// RegisterHandlers subscribes the module to payment events so a verified
// purchase kicks off generation without the frontend having to call back.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ReportPurchased{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ReportPurchased:
		result, err := m.service.Generate(ctx, e.LeadID)
		if err != nil {
			m.log.Error("report generation failed", "lead_id", e.LeadID.String(), "error", err.Error())
			return err
		}
		if result.AlreadyGenerated {
			m.log.Debug("report already generated", "lead_id", e.LeadID.String())
		}
		return nil
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
