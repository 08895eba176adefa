package adapter

import "context"

type TemplateKind string

const (
	TemplateOTP               TemplateKind = "otp"
	TemplatePendingPayment    TemplateKind = "pending-payment"
	TemplatePaymentSuccess    TemplateKind = "payment-success"
	TemplateDeletionWarning   TemplateKind = "deletion-warning-first"
	TemplateFinalWarning      TemplateKind = "deletion-warning-final"
	TemplateAccountDeleted    TemplateKind = "account-deleted"
	TemplateResendPaymentLink TemplateKind = "resend-payment-link"
)

// NotificationSink dispatches email-like messages. Delivery is fire and
// forget: callers log a returned error and never propagate it into the state
// transition the message accompanied.
type NotificationSink interface {
	Send(ctx context.Context, recipient string, kind TemplateKind, data map[string]string) error
}
