package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tazhate/complybot/internal/domain"
)

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !msg.IsCommand() {
		return
	}

	chat, err := b.storage.GetChat(chatID)
	if err != nil {
		log.Printf("Error getting chat %d: %v", chatID, err)
		return
	}

	b.handleCommand(msg, chat)
}

// isChatAdmin reports whether the user may mutate chat state: the chat
// creator or anyone registered as an escalation admin.
func (b *Bot) isChatAdmin(chat *domain.Chat, userID int64) bool {
	if chat == nil {
		return false
	}
	if userID == chat.AdminID {
		return true
	}

	admins, err := b.storage.ListChatAdmins(chat.ChatID)
	if err != nil {
		log.Printf("Error listing admins for chat %d: %v", chat.ChatID, err)
		return false
	}
	for _, id := range admins {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	chat, err := b.storage.GetChat(chatID)
	if err != nil || chat == nil {
		b.api.Request(tgbotapi.NewCallback(callback.ID, "Чат не зарегистрирован, /start"))
		return
	}

	if !b.isChatAdmin(chat, userID) {
		b.api.Request(tgbotapi.NewCallback(callback.ID, "⛔ Только для администраторов"))
		return
	}

	data := callback.Data
	parts := strings.Split(data, ":")

	switch parts[0] {
	case "resolve":
		// resolve:eventID
		if len(parts) != 2 {
			return
		}
		eventID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return
		}

		ev, err := b.eventService.Resolve(eventID, chatID, time.Now().In(b.cfg.Timezone))
		if err != nil {
			b.api.Request(tgbotapi.NewCallback(callback.ID, "❌ "+err.Error()))
			return
		}

		b.api.Request(tgbotapi.NewCallback(callback.ID, "✅ Отмечено"))
		b.SendMessage(chatID, fmt.Sprintf("✅ Событие #%d пройдено. Следующий срок: %s",
			ev.ID, ev.DueDate.Format("02.01.2006")))

	case "delstaff":
		// delstaff:employeeID
		if len(parts) != 2 {
			return
		}
		employeeID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return
		}

		if err := b.employeeService.Delete(employeeID, chatID); err != nil {
			b.api.Request(tgbotapi.NewCallback(callback.ID, "❌ "+err.Error()))
			return
		}

		b.api.Request(tgbotapi.NewCallback(callback.ID, "🗑 Удалён"))
		b.SendMessage(chatID, fmt.Sprintf("🗑 Сотрудник #%d и его события удалены", employeeID))

	default:
		b.api.Request(tgbotapi.NewCallback(callback.ID, ""))
	}
}
