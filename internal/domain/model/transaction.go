package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSucceeded TransactionStatus = "succeeded"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an append-only audit record of a payment attempt/result.
// GatewaySessionID is the idempotency key for webhook-driven upserts.
type Transaction struct {
	ID               string // ULID, sortable by creation time
	AccountID        *string
	PendingSignupID  *string
	GatewaySessionID string
	GatewayPaymentID string
	AmountCents      int64
	Currency         string
	Status           TransactionStatus
	PlanID           string
	CheckoutURL      string
	CreatedAt        time.Time
}

func NewTransactionID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
