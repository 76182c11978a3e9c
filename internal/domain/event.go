package domain

import "time"

// UrgencyTier ranks how close a compliance event is to its due date.
// Severity order: Overdue > Critical > Urgent > Warning > Info.
type UrgencyTier string

const (
	TierInfo     UrgencyTier = "info"     // > 30 дней
	TierWarning  UrgencyTier = "warning"  // 8-30 дней
	TierUrgent   UrgencyTier = "urgent"   // 4-7 дней
	TierCritical UrgencyTier = "critical" // 0-3 дня
	TierOverdue  UrgencyTier = "overdue"  // срок прошёл
)

// ClassifyDays maps days-until-due to an urgency tier. Total over all
// integers: the five ranges are contiguous and non-overlapping.
func ClassifyDays(daysUntil int) UrgencyTier {
	switch {
	case daysUntil < 0:
		return TierOverdue
	case daysUntil <= 3:
		return TierCritical
	case daysUntil <= 7:
		return TierUrgent
	case daysUntil <= 30:
		return TierWarning
	default:
		return TierInfo
	}
}

func (t UrgencyTier) Emoji() string {
	switch t {
	case TierOverdue:
		return "🔴"
	case TierCritical:
		return "🚨"
	case TierUrgent:
		return "🟠"
	case TierWarning:
		return "🟡"
	case TierInfo:
		return "🟢"
	default:
		return "⚪"
	}
}

// Escalates reports whether the tier requires admin escalation.
func (t UrgencyTier) Escalates() bool {
	return t == TierCritical || t == TierOverdue
}

// Event is a recurring compliance obligation for one employee
// (медосмотр, инструктаж по охране труда и т.п.).
type Event struct {
	ID           int64
	ChatID       int64
	EmployeeID   int64
	Kind         string
	DueDate      time.Time // date only, no time component
	IntervalDays int       // recurrence period, used when resolving
	ResolvedAt   *time.Time
	CreatedAt    time.Time
}

func (e *Event) IsResolved() bool {
	return e.ResolvedAt != nil
}

// DaysUntil returns whole calendar days from today to the due date
// (negative when overdue). Both dates are truncated to midnight first.
func (e *Event) DaysUntil(today time.Time) int {
	return DaysBetween(today, e.DueDate)
}

// DaysBetween returns whole calendar days from a to b, ignoring the
// time-of-day component of both.
func DaysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// DueEvent is one row of the sweep query: an unresolved event joined
// with its employee and chat settings.
type DueEvent struct {
	EventID          int64
	ChatID           int64
	EmployeeID       int64
	Kind             string
	DueDate          time.Time
	IntervalDays     int
	EmployeeName     string
	Position         string
	EmployeeTgID     int64 // 0 если сотрудник не привязан к Telegram
	AdminID          int64
	NotificationDays int
	Timezone         string
}
