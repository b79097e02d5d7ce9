package email

import (
	"context"
	"log/slog"

	"github.com/lifevault/lifevault/internal/model"
)

// LogSender writes mail to the log instead of delivering it. Used in
// development when no SMTP server is configured.
type LogSender struct {
	baseURL   string
	graceDays int
	logger    *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(baseURL string, graceDays int, logger *slog.Logger) *LogSender {
	return &LogSender{
		baseURL:   baseURL,
		graceDays: graceDays,
		logger:    logger.With("component", "email.log"),
	}
}

func (s *LogSender) SendWarning(ctx context.Context, user *model.User, tier model.WarningTier, daysInactive int, token string) error {
	msg := renderWarning(s.baseURL, user, tier, daysInactive, s.graceDays, token)
	s.logger.Info("email (not sent)",
		"to", msg.To,
		"subject", msg.Subject,
		"tier", tier.String(),
		"days_inactive", daysInactive,
	)
	return nil
}

func (s *LogSender) SendContactVerification(ctx context.Context, contact *model.TrustedContact, user *model.User) error {
	msg := renderContactVerification(s.baseURL, contact, user)
	s.logger.Info("email (not sent)", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (s *LogSender) SendDisclosure(ctx context.Context, contact *model.TrustedContact, user *model.User, accessRef string) error {
	msg := renderDisclosure(s.baseURL, contact, user, accessRef)
	s.logger.Info("email (not sent)", "to", msg.To, "subject", msg.Subject)
	return nil
}
