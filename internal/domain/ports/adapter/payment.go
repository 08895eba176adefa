package adapter

import "context"

// CreateSessionRequest carries everything the gateway needs to mint a hosted
// checkout session. Metadata is echoed back verbatim on the confirmation
// event and carries the correlation ids.
type CreateSessionRequest struct {
	AmountCents   int64
	Currency      string
	ProductTitle  string
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string // optional
}

type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// ConfirmationEvent is a decoded, authenticity-verified gateway event.
// Exactly one of the two correlation shapes is populated: PendingSignupID
// for a new signup, AccountID+PlanID for a renewal.
type ConfirmationEvent struct {
	Type            string
	SessionID       string
	PaymentID       string
	AmountReceived  int64
	PendingSignupID string
	AccountID       string
	PlanID          string
}

// EventCheckoutCompleted is the only event type the lifecycle engine acts on.
const EventCheckoutCompleted = "checkout.session.completed"

// PaymentGateway is the port for the external payment processor.
type PaymentGateway interface {
	Name() string
	CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error)
	// VerifyAndDecodeEvent checks the signature header against the raw
	// payload and decodes the event. Returns domain.ErrSignature on any
	// authenticity failure; the event must not reach the engine in that case.
	VerifyAndDecodeEvent(payload []byte, signatureHeader string) (*ConfirmationEvent, error)
}
