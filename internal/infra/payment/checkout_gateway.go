package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"classroom-subscription/internal/domain/ports/adapter"
)

// Ensure interface compliance
var _ adapter.PaymentGateway = (*CheckoutGateway)(nil)

// CheckoutGateway implements the payment port against a hosted-checkout
// processor using direct HTTP calls. Sessions are created server-side; the
// customer is redirected to the returned URL and the processor reports the
// outcome through a signed webhook.
type CheckoutGateway struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

func NewCheckoutGateway(secretKey, webhookSecret string) *CheckoutGateway {
	return &CheckoutGateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       "https://api.stripe.com/v1",
		client:        &http.Client{},
	}
}

func (g *CheckoutGateway) Name() string { return "stripe-checkout" }

// checkoutSessionResponse is the subset of the session object we consume.
type checkoutSessionResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession mints a hosted checkout session. The processor's API is
// form-encoded on the way in and JSON on the way out.
func (g *CheckoutGateway) CreateSession(ctx context.Context, req adapter.CreateSessionRequest) (*adapter.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", req.Currency)
	form.Set("line_items[0][price_data][unit_amount]", fmt.Sprintf("%d", req.AmountCents))
	form.Set("line_items[0][price_data][product_data][name]", req.ProductTitle)
	if req.CustomerEmail != "" {
		form.Set("customer_email", req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var session checkoutSessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if session.Error != nil {
		return nil, fmt.Errorf("gateway error: type %s, message: %s", session.Error.Type, session.Error.Message)
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("gateway returned incomplete session, body: %s", string(body))
	}

	return &adapter.CheckoutSession{SessionID: session.ID, RedirectURL: session.URL}, nil
}

// webhookEvent mirrors the processor's event envelope for the one event type
// we consume.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			PaymentIntent string            `json:"payment_intent"`
			AmountTotal   int64             `json:"amount_total"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// VerifyAndDecodeEvent authenticates the payload against the signature
// header and decodes the event. Signature checking lives in webhook.go.
func (g *CheckoutGateway) VerifyAndDecodeEvent(payload []byte, signatureHeader string) (*adapter.ConfirmationEvent, error) {
	if err := verifySignature(payload, signatureHeader, g.webhookSecret, signatureTolerance); err != nil {
		return nil, err
	}

	var ev webhookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	obj := ev.Data.Object
	return &adapter.ConfirmationEvent{
		Type:            ev.Type,
		SessionID:       obj.ID,
		PaymentID:       obj.PaymentIntent,
		AmountReceived:  obj.AmountTotal,
		PendingSignupID: obj.Metadata["pending_id"],
		AccountID:       obj.Metadata["account_id"],
		PlanID:          obj.Metadata["plan_id"],
	}, nil
}
