package inactivity

import "github.com/lifevault/lifevault/internal/model"

// DefaultGracePeriodDays is the process-wide grace window applied after a
// user's configured inactivity period elapses.
const DefaultGracePeriodDays = 14

// Action is what the evaluator should do for a user on this pass.
type Action int

const (
	// ActionNone means no notification is due today.
	ActionNone Action = iota
	// ActionWarn means a warning email of Outcome.Tier is due.
	ActionWarn
	// ActionDisclose means the grace window has expired and the vault
	// should be revealed, unless the episode was already disclosed.
	ActionDisclose
)

// Outcome is the ephemeral result of classifying one user on one pass.
type Outcome struct {
	Action       Action
	Tier         model.WarningTier
	DaysInactive int
}

// Classify maps elapsed silence to the escalation outcome for a user whose
// inactivity period is periodDays, with a graceDays window after it.
// Exactly one outcome applies; earlier cases take precedence.
//
// The 50% and 75% checkpoints match a single exact day. If no evaluation
// runs on that day (scheduler downtime), that checkpoint is skipped for the
// episode. This is a known limitation, kept deliberately: the range-based
// final-week and grace-period tiers tolerate missed runs, the one-shot
// checkpoints do not.
func Classify(daysInactive, periodDays, graceDays int) Outcome {
	switch {
	case daysInactive >= periodDays+graceDays:
		return Outcome{Action: ActionDisclose, DaysInactive: daysInactive}

	case daysInactive >= periodDays:
		// Inside the grace window: warn every other day.
		if (daysInactive-periodDays)%2 == 0 {
			return warn(model.TierGracePeriod, daysInactive)
		}
		return Outcome{Action: ActionNone, DaysInactive: daysInactive}

	case daysInactive >= periodDays-7:
		return warn(model.TierFinalWeek, daysInactive)

	case daysInactive == periodDays*3/4:
		return warn(model.TierSeventyFivePercent, daysInactive)

	case daysInactive == periodDays/2:
		return warn(model.TierFiftyPercent, daysInactive)

	default:
		return Outcome{Action: ActionNone, DaysInactive: daysInactive}
	}
}

func warn(tier model.WarningTier, days int) Outcome {
	return Outcome{Action: ActionWarn, Tier: tier, DaysInactive: days}
}
