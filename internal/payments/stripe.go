// Package payments handles report checkout and payment verification against
// the Stripe API.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"growthscore_backend/platform/apperr"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// CheckoutSession is the subset of a Stripe Checkout Session this module
// reads.
type CheckoutSession struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	PaymentStatus   string            `json:"payment_status"`
	Metadata        map[string]string `json:"metadata"`
	CustomerDetails struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"customer_details"`
}

// CreateSessionParams describes a one-off payment checkout.
type CreateSessionParams struct {
	CustomerEmail      string
	ProductName        string
	ProductDescription string
	ProductImageURL    string
	AmountCents        int64
	Currency           string
	Metadata           map[string]string
	SuccessURL         string
	CancelURL          string
}

// StripeClient talks to the Stripe REST API with form-encoded requests.
type StripeClient struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewStripeClient creates a Stripe API client.
func NewStripeClient(secretKey string) *StripeClient {
	return &StripeClient{
		baseURL:   defaultStripeBaseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateCheckoutSession creates a single-payment checkout session.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("customer_email", params.CustomerEmail)
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	if params.ProductDescription != "" {
		form.Set("line_items[0][price_data][product_data][description]", params.ProductDescription)
	}
	if params.ProductImageURL != "" {
		form.Set("line_items[0][price_data][product_data][images][0]", params.ProductImageURL)
	}
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountCents, 10))
	form.Set("line_items[0][quantity]", "1")
	for key, value := range params.Metadata {
		form.Set("metadata["+key+"]", value)
	}
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	return c.do(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()))
}

// GetCheckoutSession retrieves a checkout session by ID.
func (c *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error) {
	return c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
}

func (c *StripeClient) do(ctx context.Context, method, path string, body io.Reader) (CheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return CheckoutSession{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return CheckoutSession{}, apperr.Upstream("stripe request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return CheckoutSession{}, apperr.Upstream(
			fmt.Sprintf("stripe returned %d: %s", resp.StatusCode, stripeErrorMessage(data)), nil)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return CheckoutSession{}, apperr.Upstream("decode stripe response", err)
	}
	return session, nil
}

// stripeErrorMessage pulls the human-readable message out of a Stripe error
// body, falling back to the raw payload.
func stripeErrorMessage(data []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return strings.TrimSpace(string(data))
}
