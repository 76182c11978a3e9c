package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/tazhate/complybot/internal/crypto"
	"github.com/tazhate/complybot/internal/domain"
	"github.com/tazhate/complybot/internal/storage"
)

// EventService manages compliance events and feeds the notification
// sweep: it implements notify.Store and notify.AdminLister, handing out
// rows with PII already decrypted.
type EventService struct {
	storage *storage.Storage
	box     *crypto.Box
}

func NewEventService(s *storage.Storage, box *crypto.Box) *EventService {
	return &EventService{storage: s, box: box}
}

func (s *EventService) Add(chatID, employeeID int64, kind string, due time.Time, intervalDays int) (*domain.Event, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, fmt.Errorf("event kind cannot be empty")
	}
	if intervalDays <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}

	emp, err := s.storage.GetEmployee(employeeID)
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	if emp == nil || emp.ChatID != chatID {
		return nil, fmt.Errorf("employee not found")
	}

	ev := &domain.Event{
		ChatID:       chatID,
		EmployeeID:   employeeID,
		Kind:         kind,
		DueDate:      due,
		IntervalDays: intervalDays,
	}
	if err := s.storage.CreateEvent(ev); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return ev, nil
}

func (s *EventService) Get(id int64) (*domain.Event, error) {
	return s.storage.GetEvent(id)
}

// List returns the chat's unresolved events joined with employee data,
// due-date ascending.
func (s *EventService) List(chatID int64) ([]*domain.DueEvent, error) {
	events, err := s.storage.ListChatEvents(chatID)
	if err != nil {
		return nil, err
	}
	s.revealAll(events)
	return events, nil
}

// Resolve marks the obligation done: the due date rolls forward to
// today + interval, which drops the event back to a calm tier on the
// next sweep.
func (s *EventService) Resolve(eventID, chatID int64, today time.Time) (*domain.Event, error) {
	ev, err := s.storage.GetEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ev == nil || ev.ChatID != chatID {
		return nil, fmt.Errorf("event not found")
	}

	next := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, ev.IntervalDays)
	if err := s.storage.RollEventDueDate(eventID, next); err != nil {
		return nil, fmt.Errorf("roll due date: %w", err)
	}

	ev.DueDate = next
	return ev, nil
}

// Archive removes an event from tracking without scheduling a next cycle.
func (s *EventService) Archive(eventID, chatID int64) error {
	ev, err := s.storage.GetEvent(eventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if ev == nil || ev.ChatID != chatID {
		return fmt.Errorf("event not found")
	}
	return s.storage.ArchiveEvent(eventID)
}

// QueryDueEvents is the sweep snapshot (notify.Store).
func (s *EventService) QueryDueEvents(today time.Time) ([]*domain.DueEvent, error) {
	events, err := s.storage.QueryDueEvents(today)
	if err != nil {
		return nil, err
	}
	s.revealAll(events)
	return events, nil
}

// ListChatAdmins resolves escalation recipients (notify.AdminLister).
func (s *EventService) ListChatAdmins(chatID int64) ([]int64, error) {
	return s.storage.ListChatAdmins(chatID)
}

func (s *EventService) FormatEventList(events []*domain.DueEvent, today time.Time) string {
	if len(events) == 0 {
		return "Нет отслеживаемых событий"
	}

	var sb strings.Builder
	for _, ev := range events {
		days := domain.DaysBetween(today, ev.DueDate)
		tier := domain.ClassifyDays(days)
		sb.WriteString(fmt.Sprintf("%s #%d %s — %s, %s (%s)\n",
			tier.Emoji(), ev.EventID, ev.EmployeeName, ev.Kind,
			ev.DueDate.Format("02.01.2006"), daysPhrase(days)))
	}
	return sb.String()
}

func daysPhrase(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("просрочено на %d дн.", -days)
	case days == 0:
		return "сегодня"
	default:
		return fmt.Sprintf("через %d дн.", days)
	}
}

func (s *EventService) revealAll(events []*domain.DueEvent) {
	for _, ev := range events {
		ev.EmployeeName = decryptOr(s.box, ev.EmployeeName)
		ev.Position = decryptOr(s.box, ev.Position)
	}
}
