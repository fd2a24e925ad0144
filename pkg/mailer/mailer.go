package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Email is a single outbound message. Text is optional; when empty a plain
// variant is derived from the HTML body's subject line context.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers outbound email. The engagement engine dispatches through
// this interface fire-and-forget; delivery failures are logged by the
// caller, never surfaced to the triggering request.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// Config contains credentials for the SendGrid mailer.
type Config struct {
	APIKey    string
	FromName  string
	FromEmail string
}

// Service implements Mailer using the SendGrid v3 API.
type Service struct {
	key    string
	from   *mail.Email
	logger zerolog.Logger
}

// New constructs a SendGrid mailer.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.APIKey == "" || cfg.FromEmail == "" {
		return nil, fmt.Errorf("sendgrid api key and from address must be provided")
	}

	return &Service{
		key:    cfg.APIKey,
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		logger: logger.With().Str("component", "mailer").Logger(),
	}, nil
}

// Send delivers the email through SendGrid.
func (s *Service) Send(_ context.Context, email Email) error {
	to := mail.NewEmail("", strings.TrimSpace(email.To))
	text := email.Text
	if text == "" {
		text = email.Subject
	}

	message := mail.NewSingleEmail(s.from, email.Subject, to, text, email.HTML)
	client := sendgrid.NewSendClient(s.key)

	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message: status %d", response.StatusCode)
	}

	s.logger.Debug().Str("to", email.To).Str("subject", email.Subject).Msg("email dispatched")
	return nil
}
