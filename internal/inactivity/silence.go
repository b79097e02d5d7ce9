package inactivity

import "time"

// DaysInactive returns the number of whole calendar days between the user's
// last activity and now. Both instants are flattened to their UTC calendar
// date first, so two instants on the same day yield 0 regardless of hour.
// Never negative: a last-activity instant in the future counts as 0.
func DaysInactive(lastActivity, now time.Time) int {
	last := lastActivity.UTC()
	cur := now.UTC()

	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	curDay := time.Date(cur.Year(), cur.Month(), cur.Day(), 0, 0, 0, 0, time.UTC)

	days := int(curDay.Sub(lastDay).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
