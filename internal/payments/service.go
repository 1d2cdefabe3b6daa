package payments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"growthscore_backend/internal/events"
	"growthscore_backend/platform/apperr"
	"growthscore_backend/platform/config"
	"growthscore_backend/platform/logger"
)

const (
	reportProductName        = "Growth Assessment Report"
	reportProductDescription = "Personalised AI-powered growth report with 8-10 actionable recommendations, industry benchmarks, and implementation steps."
	reportProductImageURL    = "https://quentinhunter.com/assets/images/og-image.png"
)

// Checkout abstracts the payment gateway so the service can be tested
// without Stripe.
type Checkout interface {
	CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error)
}

// LeadMarker records a verified purchase on the lead. Satisfied by the leads
// module repository.
type LeadMarker interface {
	MarkPaid(ctx context.Context, id uuid.UUID, sessionID string, paidAt time.Time) error
}

// Service provides business logic for report purchases.
type Service struct {
	checkout Checkout
	leads    LeadMarker
	bus      events.Bus
	log      *logger.Logger

	priceCents int64
	currency   string
	baseURL    string
	now        func() time.Time
}

// NewService creates the payments service.
func NewService(checkout Checkout, leads LeadMarker, bus events.Bus, cfg config.StripeConfig, log *logger.Logger) *Service {
	return &Service{
		checkout:   checkout,
		leads:      leads,
		bus:        bus,
		log:        log,
		priceCents: cfg.GetReportPriceCents(),
		currency:   cfg.GetReportCurrency(),
		baseURL:    cfg.GetAppBaseURL(),
		now:        time.Now,
	}
}

// CheckoutResponse returns the hosted payment page for the client to open.
type CheckoutResponse struct {
	Success   bool   `json:"success"`
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// CreateCheckout opens a checkout session for the report purchase. The lead
// ID rides along in session metadata so verification can find the lead
// without any server-side session storage.
func (s *Service) CreateCheckout(ctx context.Context, leadID, customerEmail, customerName string) (CheckoutResponse, error) {
	session, err := s.checkout.CreateCheckoutSession(ctx, CreateSessionParams{
		CustomerEmail:      customerEmail,
		ProductName:        reportProductName,
		ProductDescription: reportProductDescription,
		ProductImageURL:    reportProductImageURL,
		AmountCents:        s.priceCents,
		Currency:           s.currency,
		Metadata: map[string]string{
			"leadId":       leadID,
			"customerName": customerName,
		},
		SuccessURL: s.baseURL + "/growthquiz/report-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.baseURL + "/growthquiz/results",
	})
	if err != nil {
		s.log.UpstreamError("stripe", "create checkout session", err)
		return CheckoutResponse{}, err
	}

	return CheckoutResponse{Success: true, URL: session.URL, SessionID: session.ID}, nil
}

// VerifyResponse reports the outcome of a payment verification.
type VerifyResponse struct {
	Success       bool   `json:"success"`
	LeadID        string `json:"leadId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	PaymentStatus string `json:"paymentStatus"`
}

// VerifyPayment retrieves the checkout session and, when paid, records the
// purchase on the lead and announces it. An unpaid session is a client
// error, not an upstream failure.
func (s *Service) VerifyPayment(ctx context.Context, sessionID string) (VerifyResponse, error) {
	session, err := s.checkout.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.log.UpstreamError("stripe", "retrieve checkout session", err)
		return VerifyResponse{}, err
	}

	if session.PaymentStatus != "paid" {
		return VerifyResponse{}, apperr.BadRequest("payment not completed")
	}

	resp := VerifyResponse{
		Success:       true,
		LeadID:        session.Metadata["leadId"],
		CustomerName:  session.Metadata["customerName"],
		CustomerEmail: session.CustomerDetails.Email,
		PaymentStatus: session.PaymentStatus,
	}
	if resp.CustomerName == "" {
		resp.CustomerName = session.CustomerDetails.Name
	}

	// A session without lead metadata (or carrying a temp placeholder from a
	// degraded save) still verifies; there is just no lead row to update.
	leadID, parseErr := uuid.Parse(resp.LeadID)
	if parseErr != nil {
		return resp, nil
	}

	if err := s.leads.MarkPaid(ctx, leadID, session.ID, s.now()); err != nil {
		return VerifyResponse{}, err
	}

	s.bus.Publish(ctx, events.ReportPurchased{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		SessionID: session.ID,
	})
	return resp, nil
}
