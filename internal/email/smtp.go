package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/lifevault/lifevault/internal/model"
)

// SMTPConfig holds connection settings for the outbound mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the public application URL embedded in links.
	BaseURL string
	// GracePeriodDays feeds the warning copy.
	GracePeriodDays int
}

// SMTPSender delivers mail over plain SMTP with AUTH PLAIN.
type SMTPSender struct {
	cfg  SMTPConfig
	addr string
	// send is a seam for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:  cfg,
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		send: smtp.SendMail,
	}
}

// SendWarning delivers an inactivity warning to the user.
func (s *SMTPSender) SendWarning(ctx context.Context, user *model.User, tier model.WarningTier, daysInactive int, token string) error {
	msg := renderWarning(s.cfg.BaseURL, user, tier, daysInactive, s.cfg.GracePeriodDays, token)
	return s.deliver(ctx, msg)
}

// SendContactVerification delivers the verification request to a contact.
func (s *SMTPSender) SendContactVerification(ctx context.Context, contact *model.TrustedContact, user *model.User) error {
	msg := renderContactVerification(s.cfg.BaseURL, contact, user)
	return s.deliver(ctx, msg)
}

// SendDisclosure delivers the vault-reveal notice to a verified contact.
func (s *SMTPSender) SendDisclosure(ctx context.Context, contact *model.TrustedContact, user *model.User, accessRef string) error {
	msg := renderDisclosure(s.cfg.BaseURL, contact, user, accessRef)
	return s.deliver(ctx, msg)
}

func (s *SMTPSender) deliver(ctx context.Context, msg message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	if err := s.send(s.addr, auth, s.cfg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}
