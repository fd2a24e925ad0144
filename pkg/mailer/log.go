package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// LogMailer logs outbound email instead of delivering it. Used in
// development and tests, and whenever no SendGrid key is configured.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer constructs a logging mailer.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "mailer").Logger()}
}

// Send logs the message and reports success.
func (l *LogMailer) Send(_ context.Context, email Email) error {
	l.logger.Info().
		Str("to", email.To).
		Str("subject", email.Subject).
		Msg("email delivery skipped (log mailer)")
	return nil
}
