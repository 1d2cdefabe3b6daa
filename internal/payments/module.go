package payments

import (
	"growthscore_backend/internal/events"
	apphttp "growthscore_backend/internal/http"
	"growthscore_backend/platform/config"
	"growthscore_backend/platform/logger"
	"growthscore_backend/platform/validator"
)

// Module is the payments bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the payments module.
func NewModule(leads LeadMarker, bus events.Bus, cfg config.StripeConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(NewStripeClient(cfg.GetStripeSecretKey()), leads, bus, cfg, log)
	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "payments"
}

// Service returns the service layer for external use.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts payment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quiz := ctx.V1.Group("/quiz")
	quiz.POST("/checkout", m.handler.CreateCheckout)
	quiz.POST("/verify-payment", m.handler.VerifyPayment)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
