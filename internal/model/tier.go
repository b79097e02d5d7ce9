package model

// WarningTier identifies which escalation warning applies at a given amount
// of elapsed silence. The zero value means no tier.
type WarningTier int

const (
	TierNone WarningTier = iota
	// TierFiftyPercent fires once, on the day silence reaches half of the
	// configured inactivity period.
	TierFiftyPercent
	// TierSeventyFivePercent fires once, at three quarters of the period.
	TierSeventyFivePercent
	// TierFinalWeek fires daily during the last seven days before the
	// inactivity period elapses.
	TierFinalWeek
	// TierGracePeriod fires every other day once the period has elapsed,
	// until the grace window runs out.
	TierGracePeriod
)

// String returns the tier name used in emails and activity-log descriptions.
func (t WarningTier) String() string {
	switch t {
	case TierFiftyPercent:
		return "50% warning"
	case TierSeventyFivePercent:
		return "75% warning"
	case TierFinalWeek:
		return "final week warning"
	case TierGracePeriod:
		return "grace period warning"
	default:
		return "none"
	}
}

// IsValid reports whether t is one of the defined warning tiers.
func (t WarningTier) IsValid() bool {
	return t >= TierFiftyPercent && t <= TierGracePeriod
}
