package notify

import (
	"log"

	"github.com/tazhate/complybot/internal/domain"
)

// Sender is the outbound side of the chat transport.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// AdminLister resolves the escalation recipients of a chat.
type AdminLister interface {
	ListChatAdmins(chatID int64) ([]int64, error)
}

// Router fans critical and overdue reminders out to every registered
// admin of the event's chat.
type Router struct {
	admins AdminLister
	sender Sender
}

func NewRouter(admins AdminLister, sender Sender) *Router {
	return &Router{admins: admins, sender: sender}
}

// Escalate delivers a wrapped copy of the message to each chat admin and
// returns how many deliveries succeeded. A failed delivery (blocked bot,
// deactivated account) is logged and skipped; the remaining admins still
// get theirs.
func (r *Router) Escalate(ev *domain.DueEvent, tier domain.UrgencyTier, text string) int {
	if !tier.Escalates() {
		return 0
	}

	admins, err := r.admins.ListChatAdmins(ev.ChatID)
	if err != nil {
		log.Printf("Error listing admins for chat %d: %v", ev.ChatID, err)
		return 0
	}

	wrapped := "⚠️ <b>ЭСКАЛАЦИЯ</b>\n\n" + text

	delivered := 0
	for _, admin := range admins {
		if err := r.sender.SendMessage(admin, wrapped); err != nil {
			log.Printf("Error escalating event %d to admin %d: %v", ev.EventID, admin, err)
			continue
		}
		delivered++
	}
	return delivered
}
