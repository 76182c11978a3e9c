package notify

import "github.com/tazhate/complybot/internal/domain"

// ShouldFire decides whether a reminder goes out on this sweep.
//
// Overdue and critical events fire on every sweep until resolved; the
// repetition is the escalation pressure. The calmer tiers fire exactly
// once, at a fixed distance from the due date: urgent at 7 days, warning
// at 30, info at the chat's configured lead time. No sent-ledger is kept.
// The decision is pure due-date arithmetic, so a sweep skipped on the
// single-shot day simply loses that reminder.
func ShouldFire(tier domain.UrgencyTier, daysUntil, notificationDays int) bool {
	switch tier {
	case domain.TierOverdue, domain.TierCritical:
		return true
	case domain.TierUrgent:
		return daysUntil == 7
	case domain.TierWarning:
		return daysUntil == 30
	case domain.TierInfo:
		return daysUntil == notificationDays
	default:
		return false
	}
}
