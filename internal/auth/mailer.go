package auth

import (
	"context"

	"github.com/rs/zerolog"
)

// LogMailer writes reset links to the log instead of sending email.
// Useful for development and as the default until SMTP is configured.
type LogMailer struct {
	log *zerolog.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(logger *zerolog.Logger) *LogMailer {
	return &LogMailer{log: logger}
}

// SendPasswordReset logs the reset link for the given address.
func (m *LogMailer) SendPasswordReset(_ context.Context, email, resetLink string) error {
	m.log.Info().
		Str("email", email).
		Str("reset_link", resetLink).
		Msg("password reset link issued")
	return nil
}
