// Package notify sends the end-of-run summary email.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("pricewatch.lib.notify")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type Config struct {
	Smtp SmtpConfig `json:"smtp"`
	// summary recipients; empty disables sending
	Recipients []string `json:"recipients"`
}

type Mailer struct {
	config Config
}

func NewMailer(config Config) Mailer {
	return Mailer{config: config}
}

// Enabled reports whether the mailer has anyone to write to.
func (m Mailer) Enabled() bool {
	return len(m.config.Recipients) > 0 && m.config.Smtp.Server != ""
}

// SendRunSummary mails the plain-text run report to every configured
// recipient.
func (m Mailer) SendRunSummary(ctx context.Context, subject, body string) error {
	_, span := tracer.Start(ctx, "SendRunSummary")
	defer span.End()

	if !m.Enabled() {
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Price Watch <%s>", m.config.Smtp.EmailAddress)
	mail.To = m.config.Recipients
	mail.Subject = subject
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", m.config.Smtp.Server, m.config.Smtp.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", m.config.Smtp.EmailAddress, m.config.Smtp.Password, m.config.Smtp.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send summary email")
		return fmt.Errorf("send run summary: %w", err)
	}
	return nil
}
