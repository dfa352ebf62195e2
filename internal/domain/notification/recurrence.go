// internal/domain/notification/recurrence.go
package notification

import "time"

// Coarse repetition directives understood by the dispatcher.
const (
	RuleDaily   = "FREQ=DAILY"
	RuleWeekly  = "FREQ=WEEKLY"
	RuleMonthly = "FREQ=MONTHLY"
)

// NextOccurrence computes the next send time for a recurring notification
// from its current send time and repeat rule.
//
// Monthly recurrence uses time.AddDate's normalizing calendar arithmetic, so
// a day-of-month that does not exist in the target month rolls over into the
// following month (Jan 31 + 1 month = Mar 2 or Mar 3).
//
// Unrecognized rule strings are not an error: they fall back to a daily
// cadence so a malformed rule degrades to frequent delivery rather than
// silently stopping.
func NextOccurrence(after time.Time, rule string) time.Time {
	switch rule {
	case RuleWeekly:
		return after.Add(7 * 24 * time.Hour)
	case RuleMonthly:
		return after.AddDate(0, 1, 0)
	case RuleDaily:
		return after.Add(24 * time.Hour)
	default:
		return after.Add(24 * time.Hour)
	}
}
