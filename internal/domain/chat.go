package domain

import "time"

// DefaultNotificationDays is the lead time for the first (INFO) reminder
// when the chat has not configured its own.
const DefaultNotificationDays = 90

// Chat holds per-chat settings. AdminID is the user who registered the
// chat; additional escalation recipients live in chat_admins.
type Chat struct {
	ChatID           int64
	Title            string
	AdminID          int64
	NotificationDays int
	Timezone         string
	CreatedAt        time.Time
}

// ChatAdmin is an extra escalation recipient for a chat.
type ChatAdmin struct {
	ID         int64
	ChatID     int64
	TelegramID int64
	AddedAt    time.Time
}
