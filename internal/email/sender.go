// Package email renders and delivers outbound mail: inactivity warnings,
// contact verification requests, and vault disclosure notices.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/lifevault/lifevault/internal/model"
)

// Sender delivers application mail. The core treats delivery as
// fire-and-forget; implementations report failure and the caller decides
// what bookkeeping to skip.
type Sender interface {
	SendWarning(ctx context.Context, user *model.User, tier model.WarningTier, daysInactive int, token string) error
	SendContactVerification(ctx context.Context, contact *model.TrustedContact, user *model.User) error
	SendDisclosure(ctx context.Context, contact *model.TrustedContact, user *model.User, accessRef string) error
}

// message is a rendered plain-text email.
type message struct {
	To      string
	Subject string
	Body    string
}

// warningCopy returns the tier-specific urgency header and remaining-time
// line for a warning email.
func warningCopy(tier model.WarningTier, user *model.User, daysInactive, graceDays int) (urgency, remaining string) {
	daysLeft := user.InactivityPeriodDays - daysInactive

	switch tier {
	case model.TierFiftyPercent:
		urgency = "Routine Check-In"
		remaining = fmt.Sprintf("You have %d days remaining before the next check.", daysLeft)
	case model.TierSeventyFivePercent:
		urgency = "Important Reminder"
		remaining = fmt.Sprintf("Only %d days remaining before final notifications begin.", daysLeft)
	case model.TierFinalWeek:
		urgency = "URGENT: Final Week Notice"
		remaining = fmt.Sprintf("Only %d days left! Daily reminders will be sent.", daysLeft)
	case model.TierGracePeriod:
		urgency = "CRITICAL: Grace Period Active"
		graceLeft := graceDays - (daysInactive - user.InactivityPeriodDays)
		remaining = fmt.Sprintf("Your trusted contacts will be notified in %d days if you don't respond!", graceLeft)
	default:
		urgency = "Activity Check"
		remaining = "Please log in to confirm you're okay."
	}
	return urgency, remaining
}

// renderWarning builds the inactivity warning email for a user.
func renderWarning(baseURL string, user *model.User, tier model.WarningTier, daysInactive, graceDays int, token string) message {
	urgency, remaining := warningCopy(tier, user, daysInactive, graceDays)
	verifyURL := baseURL + "/api/activity/verify/" + token

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", user.FirstName)
	fmt.Fprintf(&b, "[%s]\n\n", urgency)
	fmt.Fprintf(&b, "It's been %d days since your last activity on Life Vault.\n\n", daysInactive)
	fmt.Fprintf(&b, "%s\n\n", remaining)
	fmt.Fprintf(&b, "Confirm you're active with one click (no login required, valid for 7 days):\n%s\n\n", verifyURL)
	fmt.Fprintf(&b, "Alternative: you can also log in at %s\n\n", baseURL)
	fmt.Fprintf(&b, "Remember: your trusted contacts will only be notified if you don't respond for your full inactivity period (%d days) plus a %d-day grace period.\n\n", user.InactivityPeriodDays, graceDays)
	b.WriteString("Best regards,\nLife Vault Team\n")

	return message{
		To:      user.Email,
		Subject: "Life Vault - Activity Check Required",
		Body:    b.String(),
	}
}

// renderContactVerification builds the email asking a new trusted contact
// to verify their address.
func renderContactVerification(baseURL string, contact *model.TrustedContact, user *model.User) message {
	verifyURL := baseURL + "/verify-contact/" + contact.VerificationToken

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", contact.Name)
	fmt.Fprintf(&b, "%s has added you as a trusted contact in their Life Vault.\n\n", user.FullName())
	fmt.Fprintf(&b, "Please click the link below to verify your email address:\n%s\n\n", verifyURL)
	b.WriteString("This link will expire in 7 days.\n\n")
	b.WriteString("Best regards,\nLife Vault Team\n")

	return message{
		To:      contact.Email,
		Subject: "Life Vault - Verify Your Email",
		Body:    b.String(),
	}
}

// renderDisclosure builds the vault-reveal notice sent to a verified
// contact once the grace window has expired.
func renderDisclosure(baseURL string, contact *model.TrustedContact, user *model.User, accessRef string) message {
	vaultURL := baseURL + "/vault-access/" + accessRef

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", contact.Name)
	fmt.Fprintf(&b, "%s has not responded to our activity checks for an extended period.\n\n", user.FullName())
	b.WriteString("As a trusted contact, you now have access to their asset information.\n\n")
	fmt.Fprintf(&b, "Access the vault here: %s\n\n", vaultURL)
	b.WriteString("Please handle this information with care.\n\n")
	b.WriteString("Best regards,\nLife Vault Team\n")

	return message{
		To:      contact.Email,
		Subject: "Life Vault - Important Information",
		Body:    b.String(),
	}
}
