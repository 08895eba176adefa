package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/rs/zerolog"

	"classroom-subscription/internal/domain/ports/adapter"
)

// Ensure interface compliance
var _ adapter.NotificationSink = (*SMTPSink)(nil)

// SMTPSink delivers templated mail over plain SMTP. Callers treat delivery
// as fire and forget; a returned error is for logging only.
type SMTPSink struct {
	addr   string // host:port
	from   string
	auth   smtp.Auth
	logger *zerolog.Logger
}

func NewSMTPSink(host string, port int, username, password, from string, logger *zerolog.Logger) *SMTPSink {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	l := logger.With().Str("component", "smtp-sink").Logger()
	return &SMTPSink{
		addr:   fmt.Sprintf("%s:%d", host, port),
		from:   from,
		auth:   auth,
		logger: &l,
	}
}

type mailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[adapter.TemplateKind]mailTemplate{
	adapter.TemplateOTP: {
		subject: "Your password reset code",
		body: template.Must(template.New("otp").Parse(
			"Hello {{.name}},\n\nYour password reset code is {{.otp}}. It expires in 10 minutes.\n" +
				"You can also reset directly: {{.link}}\n\nIf you did not request this, ignore this message.\n")),
	},
	adapter.TemplatePendingPayment: {
		subject: "Complete your payment",
		body: template.Must(template.New("pending-payment").Parse(
			"Hello {{.name}},\n\nYour registration is waiting on payment.\n" +
				"Finish checkout here: {{.url}}\n")),
	},
	adapter.TemplatePaymentSuccess: {
		subject: "Payment received",
		body: template.Must(template.New("payment-success").Parse(
			"Hello {{.name}},\n\nYour payment was received and your subscription is now active.\n")),
	},
	adapter.TemplateDeletionWarning: {
		subject: "Your account is scheduled for deletion",
		body: template.Must(template.New("deletion-warning-first").Parse(
			"Hello {{.name}},\n\nYour subscription has lapsed. Your account and its data will be deleted soon unless you renew.\n")),
	},
	adapter.TemplateFinalWarning: {
		subject: "Final notice: account deletion imminent",
		body: template.Must(template.New("deletion-warning-final").Parse(
			"Hello {{.name}},\n\nThis is the final notice. Your account and its data are about to be deleted unless you renew now.\n")),
	},
	adapter.TemplateAccountDeleted: {
		subject: "Your account has been deleted",
		body: template.Must(template.New("account-deleted").Parse(
			"Hello {{.name}},\n\nYour account and its data have been deleted. You are welcome to register again at any time.\n")),
	},
	adapter.TemplateResendPaymentLink: {
		subject: "Your payment link",
		body: template.Must(template.New("resend-payment-link").Parse(
			"Hello,\n\nHere is your payment link again: {{.url}}\nIt remains valid for {{.time_left}}.\n")),
	},
}

func (s *SMTPSink) Send(ctx context.Context, recipient string, kind adapter.TemplateKind, data map[string]string) error {
	tpl, ok := templates[kind]
	if !ok {
		return fmt.Errorf("unknown mail template %q", kind)
	}

	var body bytes.Buffer
	if err := tpl.body.Execute(&body, data); err != nil {
		return fmt.Errorf("render mail template %q: %w", kind, err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", tpl.subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.Write(body.Bytes())

	// net/smtp has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{recipient}, msg.Bytes()); err != nil {
		return fmt.Errorf("send mail %q to %s: %w", kind, recipient, err)
	}
	s.logger.Debug().Str("kind", string(kind)).Str("to", recipient).Msg("mail sent")
	return nil
}
