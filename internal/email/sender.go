package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"growthscore_backend/platform/config"
)

// FollowUpEmailData carries the personalization fields for a sequence email.
type FollowUpEmailData struct {
	FirstName      string
	CompanyName    string
	ReportURL      string
	CalendarURL    string
	OverallScore   int
	ZoneLabel      string
	WeakestPillar  string
	UnsubscribeURL string
}

// LeadAlertData carries the fields for the internal new-lead notification.
type LeadAlertData struct {
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Company           string
	OverallPercentage int
	ZoneLabel         string
	WeakestPillar     string
}

// ReportAlertData carries the fields for the internal report-generated
// notification.
type ReportAlertData struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
	ReportURL string
}

// Sender delivers quiz emails. SendFollowUpEmail returns the provider message
// ID when the provider exposes one; an empty ID with a nil error still means
// the message was accepted.
type Sender interface {
	SendFollowUpEmail(ctx context.Context, toEmail string, emailNumber int, data FollowUpEmailData) (string, error)
	SendLeadAlertEmail(ctx context.Context, toEmail string, data LeadAlertData) error
	SendReportAlertEmail(ctx context.Context, toEmail string, data ReportAlertData) error
}

// NoopSender is used when email delivery is disabled (local development,
// tests). It accepts every message and reports no provider ID.
type NoopSender struct{}

func (NoopSender) SendFollowUpEmail(ctx context.Context, toEmail string, emailNumber int, data FollowUpEmailData) (string, error) {
	return "", nil
}

func (NoopSender) SendLeadAlertEmail(ctx context.Context, toEmail string, data LeadAlertData) error {
	return nil
}

func (NoopSender) SendReportAlertEmail(ctx context.Context, toEmail string, data ReportAlertData) error {
	return nil
}

// BrevoSender delivers via the Brevo transactional API.
type BrevoSender struct {
	apiKey    string
	fromName  string
	fromEmail string
	client    *http.Client
}

type brevoEmailRequest struct {
	Sender struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
	} `json:"to"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
}

type brevoEmailResponse struct {
	MessageID string `json:"messageId"`
}

// NewSender picks a delivery backend from configuration: Brevo when an API
// key is present, the configured SMTP server otherwise, and a no-op sender
// when email is disabled entirely.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	if cfg.GetBrevoAPIKey() != "" {
		return &BrevoSender{
			apiKey:    cfg.GetBrevoAPIKey(),
			fromName:  cfg.GetEmailFromName(),
			fromEmail: cfg.GetEmailFromAddress(),
			client:    &http.Client{Timeout: 10 * time.Second},
		}, nil
	}
	if cfg.GetSMTPHost() != "" {
		return NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		), nil
	}
	return nil, fmt.Errorf("email enabled but neither BREVO_API_KEY nor SMTP_HOST configured")
}

func (b *BrevoSender) SendFollowUpEmail(ctx context.Context, toEmail string, emailNumber int, data FollowUpEmailData) (string, error) {
	content, err := renderFollowUpEmail(emailNumber, data)
	if err != nil {
		return "", err
	}
	return b.send(ctx, toEmail, FollowUpSubject(emailNumber, data.FirstName), content)
}

func (b *BrevoSender) SendLeadAlertEmail(ctx context.Context, toEmail string, data LeadAlertData) error {
	content, err := renderEmailTemplate("lead_alert.html", data)
	if err != nil {
		return err
	}
	_, err = b.send(ctx, toEmail, subjectLeadAlert, content)
	return err
}

func (b *BrevoSender) SendReportAlertEmail(ctx context.Context, toEmail string, data ReportAlertData) error {
	content, err := renderEmailTemplate("report_alert.html", data)
	if err != nil {
		return err
	}
	_, err = b.send(ctx, toEmail, subjectReportAlert, content)
	return err
}

func (b *BrevoSender) send(ctx context.Context, toEmail, subject, htmlContent string) (string, error) {
	payload := brevoEmailRequest{
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	payload.Sender.Name = b.fromName
	payload.Sender.Email = b.fromEmail
	payload.To = []struct {
		Email string `json:"email"`
	}{{Email: toEmail}}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.brevo.com/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("brevo send failed: status %d: %s", resp.StatusCode, string(data))
	}

	var result brevoEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// Delivery was accepted; a malformed ID body is not a failure.
		return "", nil
	}
	return result.MessageID, nil
}
