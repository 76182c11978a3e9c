package notify

import (
	"fmt"
	"strings"

	"github.com/tazhate/complybot/internal/domain"
)

func tierLabel(tier domain.UrgencyTier) string {
	switch tier {
	case domain.TierOverdue:
		return "ПРОСРОЧЕНО"
	case domain.TierCritical:
		return "Срочно"
	case domain.TierUrgent:
		return "Скоро срок"
	case domain.TierWarning:
		return "Приближается срок"
	case domain.TierInfo:
		return "Напоминание"
	default:
		return "Событие"
	}
}

func deadlinePhrase(daysUntil int) string {
	switch {
	case daysUntil < 0:
		return fmt.Sprintf("просрочено на %d дн.", -daysUntil)
	case daysUntil == 0:
		return "срок СЕГОДНЯ"
	default:
		return fmt.Sprintf("осталось %d дн.", daysUntil)
	}
}

// Format renders the reminder message for one due event. Missing
// optional fields get placeholders; it never fails.
func Format(ev *domain.DueEvent, tier domain.UrgencyTier, daysUntil int) string {
	kind := ev.Kind
	if kind == "" {
		kind = "(вид не указан)"
	}
	name := ev.EmployeeName
	if name == "" {
		name = "(без имени)"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>%s: %s</b>\n\n", tier.Emoji(), tierLabel(tier), kind))

	if tier.Escalates() && ev.Position != "" {
		sb.WriteString(fmt.Sprintf("👤 %s (%s)\n", name, ev.Position))
	} else {
		sb.WriteString(fmt.Sprintf("👤 %s\n", name))
	}

	if ev.DueDate.IsZero() {
		sb.WriteString("📅 срок: —\n")
	} else {
		sb.WriteString(fmt.Sprintf("📅 срок: %s\n", ev.DueDate.Format("02.01.2006")))
	}
	sb.WriteString(fmt.Sprintf("⏰ %s", deadlinePhrase(daysUntil)))

	if tier.Escalates() {
		sb.WriteString("\n\n❗️ Требуются немедленные действия")
	}

	return sb.String()
}
