// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/nexastore/nexastore/internal/config"
	"codeberg.org/nexastore/nexastore/internal/i18n"
	"codeberg.org/nexastore/nexastore/internal/metrics"
	"codeberg.org/nexastore/nexastore/internal/models"
	"github.com/wneessen/go-mail"
)

// ErrDelivery wraps every failure to hand a message to the mail transport.
var ErrDelivery = errors.New("email delivery failed")

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender, or a LogSender when no SMTP host is configured.
func NewSender(cfg *config.SMTPConfig) (Sender, error) {
	if cfg.Host == "" {
		slog.Warn("SMTP host not configured, emails will be logged instead of sent")
		return LogSender{}, nil
	}
	return NewSMTPSender(cfg)
}

// SMTPSender delivers messages through an SMTP relay using go-mail.
type SMTPSender struct {
	cfg *config.SMTPConfig
}

// NewSMTPSender creates a new SMTP sender.
func NewSMTPSender(cfg *config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &SMTPSender{cfg: cfg}, nil
}

// Send delivers msg via SMTP.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

func (s *SMTPSender) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}

	if s.cfg.ReplyTo != "" {
		if err := m.ReplyTo(s.cfg.ReplyTo); err != nil {
			return nil, fmt.Errorf("setting reply-to address: %w", err)
		}
	}

	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	return m, nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(15 * time.Second),
	}

	// Implicit TLS on 465, STARTTLS elsewhere
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	return opts
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "email_logged", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}

// Service composes the application's emails and hands them to a Sender.
type Service struct {
	sender  Sender
	codeTTL time.Duration
}

// NewService creates a new email service.
func NewService(sender Sender, codeTTL time.Duration) *Service {
	return &Service{sender: sender, codeTTL: codeTTL}
}

// SendVerificationCode emails code to the recipient in the locale carried by ctx.
func (s *Service) SendVerificationCode(ctx context.Context, to, code string, purpose models.CodePurpose) error {
	minutes := int(s.codeTTL / time.Minute)
	data := map[string]any{"Code": code, "Minutes": minutes}

	content := codeEmailContent{
		Heading: i18n.T(ctx, "email_code_heading"),
		Intro:   i18n.TData(ctx, "email_code_intro", map[string]any{"Purpose": purposeText(ctx, purpose)}),
		Code:    code,
		Expiry:  i18n.TData(ctx, "email_code_expiry", data),
		Ignore:  i18n.T(ctx, "email_code_ignore"),
	}

	var html strings.Builder
	if err := codeEmail(content).Render(ctx, &html); err != nil {
		return fmt.Errorf("rendering email: %w", err)
	}

	msg := Message{
		To:      to,
		Subject: i18n.T(ctx, "email_code_subject"),
		Text:    i18n.TData(ctx, "email_code_text", data),
		HTML:    html.String(),
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		metrics.EmailsSent.WithLabelValues("failure").Inc()
		slog.ErrorContext(ctx, "email_failed", "to", to, "purpose", purpose, "error", err)
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	metrics.EmailsSent.WithLabelValues("success").Inc()
	return nil
}

func purposeText(ctx context.Context, purpose models.CodePurpose) string {
	switch purpose {
	case models.PurposeResetPassword:
		return i18n.T(ctx, "email_purpose_reset_password")
	case models.PurposeLogin:
		return i18n.T(ctx, "email_purpose_login")
	default:
		return i18n.T(ctx, "email_purpose_signup")
	}
}
