package followup

import (
	"context"

	"growthscore_backend/internal/email"
	"growthscore_backend/internal/events"
	apphttp "growthscore_backend/internal/http"
	"growthscore_backend/platform/config"
	"growthscore_backend/platform/logger"
)

// Module is the follow-up sequence bounded context implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the follow-up module.
func NewModule(repo Repository, sender email.Sender, bus events.Bus, ticker TickScheduler, cfg config.FollowUpConfig, log *logger.Logger) *Module {
	svc := NewService(repo, sender, bus, ticker, cfg, log)
	return &Module{
		handler: NewHandler(svc, cfg.GetAppBaseURL()),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "followup"
}

// Service returns the service layer for external use.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts follow-up routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quiz := ctx.V1.Group("/quiz")
	quiz.POST("/unsubscribe", m.handler.Unsubscribe)
	quiz.GET("/unsubscribe", m.handler.UnsubscribeLink)

	ctx.Cron.POST("/quiz/follow-up/run", m.handler.RunTick)
	ctx.Cron.GET("/quiz/follow-up/log/:id", m.handler.EmailLog)
}

// RegisterHandlers subscribes to domain events that arm the sequence.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ReportGenerated{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ReportGenerated:
		_, err := m.service.Start(ctx, e.LeadID)
		return err
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
