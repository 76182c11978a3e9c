package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tazhate/complybot/internal/domain"
	"github.com/tazhate/complybot/internal/export"
)

func (b *Bot) handleCommand(msg *tgbotapi.Message, chat *domain.Chat) {
	chatID := msg.Chat.ID
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	if cmd == "start" {
		b.cmdStart(msg, chat)
		return
	}
	if cmd == "help" {
		b.cmdHelp(chatID)
		return
	}

	if chat == nil {
		b.SendMessage(chatID, "Чат не зарегистрирован. Сначала /start")
		return
	}

	switch cmd {
	case "employee":
		b.requireAdmin(chat, msg, func() { b.cmdEmployee(chatID, args) })
	case "staff":
		b.cmdStaff(chatID)
	case "event":
		b.requireAdmin(chat, msg, func() { b.cmdEvent(chatID, args) })
	case "list":
		b.cmdList(chatID)
	case "overdue":
		b.cmdOverdue(chatID)
	case "done":
		b.requireAdmin(chat, msg, func() { b.cmdDone(chatID, args) })
	case "remove":
		b.requireAdmin(chat, msg, func() { b.cmdRemove(chatID, args) })
	case "setdays":
		b.requireAdmin(chat, msg, func() { b.cmdSetDays(chatID, args) })
	case "admin":
		b.requireAdmin(chat, msg, func() { b.cmdAdmin(chatID, args) })
	case "export":
		b.cmdExport(chatID)
	case "calendar":
		b.cmdCalendar(chatID)
	case "sweep":
		b.requireAdmin(chat, msg, func() { b.cmdSweep(chatID) })
	default:
		b.SendMessage(chatID, "Неизвестная команда. /help для списка команд")
	}
}

func (b *Bot) requireAdmin(chat *domain.Chat, msg *tgbotapi.Message, fn func()) {
	if !b.isChatAdmin(chat, msg.From.ID) {
		b.SendMessage(msg.Chat.ID, "⛔ Только для администраторов")
		return
	}
	fn()
}

func (b *Bot) cmdStart(msg *tgbotapi.Message, chat *domain.Chat) {
	chatID := msg.Chat.ID

	if chat != nil {
		b.SendMessage(chatID, "👋 Чат уже зарегистрирован. /help — список команд")
		return
	}

	newChat := &domain.Chat{
		ChatID:           chatID,
		Title:            msg.Chat.Title,
		AdminID:          msg.From.ID,
		NotificationDays: b.cfg.DefaultNotifyDays,
		Timezone:         b.cfg.Timezone.String(),
	}
	if err := b.storage.CreateChat(newChat); err != nil {
		b.SendMessage(chatID, "❌ Ошибка регистрации: "+err.Error())
		return
	}
	if err := b.storage.AddChatAdmin(chatID, msg.From.ID); err != nil {
		b.SendMessage(chatID, "❌ Ошибка регистрации: "+err.Error())
		return
	}

	b.SendMessage(chatID, fmt.Sprintf(
		"👋 Привет! Я слежу за сроками медосмотров, инструктажей и аттестаций.\n\n"+
			"Добавь сотрудников (/employee) и их события (/event) — напомню за %d дней, "+
			"за 30, за 7, а по просроченным буду напоминать каждый день.\n\n/help — список команд",
		newChat.NotificationDays))
}

func (b *Bot) cmdHelp(chatID int64) {
	text := `<b>Команды:</b>

<b>Сотрудники</b>
/employee Имя; должность; telegram_id — добавить сотрудника
  (с telegram_id напоминания приходят и ему лично)
/staff — список сотрудников

<b>События</b>
/event № вид; дата; интервал — добавить событие
  пример: /event 1 медосмотр; 15.06.2026; 365
/list — все события
/overdue — просроченные и срочные
/done ID — отметить пройденным
/remove ID — снять с отслеживания

<b>Настройки</b>
/setdays N — за сколько дней предупреждать заранее (минимум 31)
/admin telegram_id — добавить получателя эскалаций

<b>Выгрузка</b>
/export — CSV со всеми событиями
/calendar — календарь сроков (.ics)

<b>Другое</b>
/sweep — прогнать проверку сроков сейчас
/help — эта справка`

	b.SendMessage(chatID, text)
}

func (b *Bot) cmdEmployee(chatID int64, args string) {
	if args == "" {
		b.SendMessage(chatID, "Формат: /employee Иванов Иван; слесарь; telegram_id\n(должность и telegram_id необязательны)")
		return
	}

	name, position, telegramID, err := parseEmployeeArgs(args)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	emp, err := b.employeeService.Add(chatID, name, position, telegramID)
	if err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	text := fmt.Sprintf("✅ Сотрудник добавлен\n\n#%d %s", emp.ID, emp.DisplayName())
	if emp.TelegramID != 0 {
		text += "\n🔔 Напоминания будут приходить ему лично"
	}
	b.SendMessage(chatID, text)
}

// parseEmployeeArgs splits "Имя; должность; telegram_id"; the last two
// fields are optional. A linked telegram_id makes the employee the
// primary recipient of his own reminders.
func parseEmployeeArgs(args string) (name, position string, telegramID int64, err error) {
	parts := strings.Split(args, ";")
	if len(parts) > 3 {
		return "", "", 0, fmt.Errorf("формат: Имя; должность; telegram_id")
	}

	name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		position = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		idStr := strings.TrimSpace(parts[2])
		if idStr != "" {
			telegramID, err = strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return "", "", 0, fmt.Errorf("неверный telegram_id: %s", idStr)
			}
		}
	}
	return name, position, telegramID, nil
}

func (b *Bot) cmdStaff(chatID int64) {
	employees, err := b.employeeService.List(chatID)
	if err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	text := "<b>👥 Сотрудники:</b>\n\n" + b.employeeService.FormatStaffList(employees)

	if keyboard := buildStaffKeyboard(employees); keyboard != nil {
		b.SendMessageWithKeyboard(chatID, text, *keyboard)
	} else {
		b.SendMessage(chatID, text)
	}
}

func (b *Bot) cmdEvent(chatID int64, args string) {
	usage := "Формат: /event № вид; дата; интервал дней\nПример: /event 1 медосмотр; 15.06.2026; 365"

	fields := strings.SplitN(args, " ", 2)
	if len(fields) != 2 {
		b.SendMessage(chatID, usage)
		return
	}

	employeeID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.SendMessage(chatID, "Неверный № сотрудника (см. /staff)")
		return
	}

	parts := strings.Split(fields[1], ";")
	if len(parts) != 3 {
		b.SendMessage(chatID, usage)
		return
	}

	kind := strings.TrimSpace(parts[0])
	due, err := time.Parse("02.01.2006", strings.TrimSpace(parts[1]))
	if err != nil {
		b.SendMessage(chatID, "Неверная дата, формат ДД.ММ.ГГГГ")
		return
	}
	interval, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		b.SendMessage(chatID, "Неверный интервал, укажи число дней")
		return
	}

	ev, err := b.eventService.Add(chatID, employeeID, kind, due, interval)
	if err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	b.SendMessage(chatID, fmt.Sprintf("✅ Событие добавлено\n\n#%d %s — срок %s, интервал %d дн.",
		ev.ID, ev.Kind, ev.DueDate.Format("02.01.2006"), ev.IntervalDays))
}

func (b *Bot) cmdList(chatID int64) {
	events, err := b.eventService.List(chatID)
	if err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	today := time.Now().In(b.cfg.Timezone)
	text := "<b>📋 События:</b>\n\n" + b.eventService.FormatEventList(events, today)

	if keyboard := buildEventKeyboard(events); keyboard != nil {
		b.SendMessageWithKeyboard(chatID, text, *keyboard)
	} else {
		b.SendMessage(chatID, text)
	}
}

func (b *Bot) cmdOverdue(chatID int64) {
	events, err := b.eventService.List(chatID)
	if err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	today := time.Now().In(b.cfg.Timezone)
	var hot []*domain.DueEvent
	for _, ev := range events {
		if domain.ClassifyDays(domain.DaysBetween(today, ev.DueDate)).Escalates() {
			hot = append(hot, ev)
		}
	}

	if len(hot) == 0 {
		b.SendMessage(chatID, "🟢 Просроченных и срочных событий нет")
		return
	}

	text := "<b>🔴 Требуют внимания:</b>\n\n" + b.eventService.FormatEventList(hot, today)
	if keyboard := buildEventKeyboard(hot); keyboard != nil {
		b.SendMessageWithKeyboard(chatID, text, *keyboard)
	} else {
		b.SendMessage(chatID, text)
	}
}

func (b *Bot) cmdDone(chatID int64, args string) {
	if args == "" {
		b.SendMessage(chatID, "Укажи ID события: /done 1")
		return
	}

	eventID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.SendMessage(chatID, "Неверный ID события")
		return
	}

	ev, err := b.eventService.Resolve(eventID, chatID, time.Now().In(b.cfg.Timezone))
	if err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	b.SendMessage(chatID, fmt.Sprintf("✅ Событие #%d пройдено. Следующий срок: %s",
		ev.ID, ev.DueDate.Format("02.01.2006")))
}

func (b *Bot) cmdRemove(chatID int64, args string) {
	if args == "" {
		b.SendMessage(chatID, "Укажи ID события: /remove 1")
		return
	}

	eventID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.SendMessage(chatID, "Неверный ID события")
		return
	}

	if err := b.eventService.Archive(eventID, chatID); err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	b.SendMessage(chatID, "🗑 Событие #"+args+" снято с отслеживания")
}

func (b *Bot) cmdSetDays(chatID int64, args string) {
	days, err := parseNotifyDays(args)
	if err != nil {
		b.SendMessage(chatID, err.Error())
		return
	}

	if err := b.storage.UpdateChatNotificationDays(chatID, days); err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	b.SendMessage(chatID, fmt.Sprintf("✅ Первое напоминание — за %d дн. до срока", days))
}

// parseNotifyDays validates the lead time for the first reminder. The
// 30- and 7-day marks are fixed, and the early reminder only exists
// beyond them: a lead of 30 or less would never fire.
func parseNotifyDays(args string) (int, error) {
	days, err := strconv.Atoi(args)
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("укажи число дней: /setdays 90")
	}
	if days <= 30 {
		return 0, fmt.Errorf("минимум 31: напоминания за 30 и за 7 дней встроены, заранее можно только раньше")
	}
	return days, nil
}

func (b *Bot) cmdAdmin(chatID int64, args string) {
	telegramID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.SendMessage(chatID, "Укажи telegram_id: /admin 123456789")
		return
	}

	if err := b.storage.AddChatAdmin(chatID, telegramID); err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	b.SendMessage(chatID, fmt.Sprintf("✅ %d будет получать эскалации", telegramID))
}

func (b *Bot) cmdExport(chatID int64) {
	events, err := b.eventService.List(chatID)
	if err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	today := time.Now().In(b.cfg.Timezone)
	data, err := export.EventsCSV(events, today)
	if err != nil {
		b.SendMessage(chatID, "❌ Ошибка выгрузки: "+err.Error())
		return
	}

	name := fmt.Sprintf("events-%s.csv", today.Format("2006-01-02"))
	if err := b.SendDocument(chatID, name, data); err != nil {
		b.SendMessage(chatID, "❌ Не удалось отправить файл: "+err.Error())
	}
}

func (b *Bot) cmdCalendar(chatID int64) {
	events, err := b.eventService.List(chatID)
	if err != nil {
		b.SendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}
	if len(events) == 0 {
		b.SendMessage(chatID, "Нет событий для календаря")
		return
	}

	data, err := export.EventsICS(events)
	if err != nil {
		b.SendMessage(chatID, "❌ Ошибка выгрузки: "+err.Error())
		return
	}

	if err := b.SendDocument(chatID, "compliance.ics", data); err != nil {
		b.SendMessage(chatID, "❌ Не удалось отправить файл: "+err.Error())
	}
}

func (b *Bot) cmdSweep(chatID int64) {
	if b.sweep == nil {
		return
	}
	res := b.sweep.Run()
	b.SendMessage(chatID, fmt.Sprintf("🔄 Проверка выполнена: отправлено %d, эскалаций %d",
		res.Sent, res.Escalated))
}
