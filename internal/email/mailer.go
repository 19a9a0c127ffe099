// Package email delivers transactional email over SMTP using templated
// HTML bodies. Delivery runs on the background job runner so it never
// blocks request handling.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/phrazzld/taskboard/internal/config"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends rendered email messages.
type Mailer interface {
	// Send delivers the message. Implementations must respect ctx
	// cancellation where the underlying transport allows it.
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer implements Mailer over plain SMTP with optional AUTH.
// TLS negotiation is left to the net/smtp STARTTLS handling inside
// SendMail.
type SMTPMailer struct {
	cfg    config.EmailConfig
	logger *slog.Logger

	// sendMail is swapped out in tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Ensure SMTPMailer implements Mailer
var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer from the email configuration.
// If logger is nil, a default logger will be used.
func NewSMTPMailer(cfg config.EmailConfig, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "smtp_mailer")),
		sendMail: smtp.SendMail,
	}
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("message has no recipient")
	}

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	raw := buildMIMEMessage(m.cfg.FromAddress, msg)

	if err := m.sendMail(addr, auth, m.cfg.FromAddress, []string{msg.To}, raw); err != nil {
		m.logger.ErrorContext(ctx, "failed to send email",
			"subject", msg.Subject,
			"error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.InfoContext(ctx, "email sent",
		"subject", msg.Subject)
	return nil
}

// buildMIMEMessage assembles the raw RFC 5322 message with an HTML body.
func buildMIMEMessage(from string, msg Message) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + msg.To + "\r\n")
	sb.WriteString("Subject: " + msg.Subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(msg.HTML)
	return []byte(sb.String())
}

// NoopMailer implements Mailer by logging and dropping messages.
// It is used when email delivery is not configured.
type NoopMailer struct {
	logger *slog.Logger
}

// Ensure NoopMailer implements Mailer
var _ Mailer = (*NoopMailer)(nil)

// NewNoopMailer creates a NoopMailer.
func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopMailer{
		logger: logger.With(slog.String("component", "noop_mailer")),
	}
}

// Send implements Mailer. The message is logged and discarded.
func (m *NoopMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "email delivery disabled, dropping message",
		"subject", msg.Subject)
	return nil
}
