// Package service implements the quiz lead business logic: scoring
// submissions, persisting leads, and announcing new leads on the event bus.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"growthscore_backend/internal/events"
	"growthscore_backend/internal/leads/repository"
	"growthscore_backend/internal/leads/transport"
	"growthscore_backend/internal/quiz/catalog"
	"growthscore_backend/internal/quiz/scoring"
	"growthscore_backend/platform/logger"
)

// Service provides business logic for quiz leads.
type Service struct {
	repo repository.Repository
	cat  catalog.Catalog
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new lead service scoring against the given catalog.
func New(repo repository.Repository, cat catalog.Catalog, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cat: cat, bus: bus, log: log}
}

// Score computes a result for the given answers without persisting anything.
func (s *Service) Score(answers map[string]string) transport.ScoreResponse {
	return transport.ScoreResponse{Result: scoring.Calculate(s.cat, answers)}
}

// SaveLead scores the submission and persists the lead. Persistence failure
// is deliberately non-fatal: the caller still gets the score and a temporary
// lead ID so the front-end flow is never blocked by a database outage.
func (s *Service) SaveLead(ctx context.Context, req transport.SaveLeadRequest) transport.SaveLeadResponse {
	result := scoring.Calculate(s.cat, req.Answers)

	token, err := newUnsubscribeToken()
	if err != nil {
		s.log.Error("generate unsubscribe token", "error", err)
		return tempLeadResponse(result)
	}

	lead, err := s.repo.Create(ctx, repository.CreateParams{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:            strings.TrimSpace(req.Phone),
		Company:          strings.TrimSpace(req.Company),
		Answers:          req.Answers,
		Result:           result,
		UnsubscribeToken: token,
	})
	if err != nil {
		s.log.DatabaseError("create lead", err)
		return tempLeadResponse(result)
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:         events.NewBaseEvent(),
		LeadID:            lead.ID,
		FirstName:         lead.FirstName,
		Email:             lead.Email,
		OverallPercentage: lead.OverallPercentage,
		Zone:              lead.Zone,
		WeakestPillar:     lead.WeakestPillar,
	})

	return transport.SaveLeadResponse{
		Success: true,
		LeadID:  lead.ID.String(),
		Saved:   true,
		Result:  result,
	}
}

// GetLead retrieves a lead by ID.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// tempLeadResponse builds the degraded response used when the lead could not
// be stored. The placeholder ID keeps downstream steps identifiable in logs.
func tempLeadResponse(result scoring.Result) transport.SaveLeadResponse {
	return transport.SaveLeadResponse{
		Success: true,
		LeadID:  "temp_" + strconv.FormatInt(time.Now().UnixMilli(), 10),
		Saved:   false,
		Result:  result,
	}
}

func newUnsubscribeToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
