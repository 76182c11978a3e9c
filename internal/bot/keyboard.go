package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tazhate/complybot/internal/domain"
)

const maxKeyboardRows = 5

func buildEventKeyboard(events []*domain.DueEvent) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, ev := range events {
		row := tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ #%d %s", ev.EventID, truncate(ev.Kind, 20)),
				fmt.Sprintf("resolve:%d", ev.EventID),
			),
		)
		rows = append(rows, row)
		if len(rows) >= maxKeyboardRows {
			break
		}
	}

	if len(rows) == 0 {
		return nil
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

func buildStaffKeyboard(employees []*domain.Employee) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, emp := range employees {
		row := tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 #%d %s", emp.ID, truncate(emp.DisplayName(), 20)),
				fmt.Sprintf("delstaff:%d", emp.ID),
			),
		)
		rows = append(rows, row)
		if len(rows) >= maxKeyboardRows {
			break
		}
	}

	if len(rows) == 0 {
		return nil
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
