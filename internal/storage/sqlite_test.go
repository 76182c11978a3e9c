package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhate/complybot/internal/domain"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedChat(t *testing.T, s *Storage, chatID int64, notifyDays int) *domain.Chat {
	t.Helper()
	c := &domain.Chat{
		ChatID:           chatID,
		Title:            "Цех №1",
		AdminID:          100,
		NotificationDays: notifyDays,
		Timezone:         "Europe/Moscow",
	}
	require.NoError(t, s.CreateChat(c))
	return c
}

func seedEmployee(t *testing.T, s *Storage, chatID int64, name string) *domain.Employee {
	t.Helper()
	e := &domain.Employee{ChatID: chatID, Name: name, Position: "слесарь"}
	require.NoError(t, s.CreateEmployee(e))
	return e
}

func seedEvent(t *testing.T, s *Storage, chatID, employeeID int64, due time.Time) *domain.Event {
	t.Helper()
	ev := &domain.Event{
		ChatID:       chatID,
		EmployeeID:   employeeID,
		Kind:         "медосмотр",
		DueDate:      due,
		IntervalDays: 365,
	}
	require.NoError(t, s.CreateEvent(ev))
	return ev
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestChatCRUD(t *testing.T) {
	s := newTestStorage(t)

	seedChat(t, s, -1001, 90)

	c, err := s.GetChat(-1001)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Цех №1", c.Title)
	assert.Equal(t, 90, c.NotificationDays)

	require.NoError(t, s.UpdateChatNotificationDays(-1001, 60))
	c, err = s.GetChat(-1001)
	require.NoError(t, err)
	assert.Equal(t, 60, c.NotificationDays)

	missing, err := s.GetChat(42)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestChatAdmins(t *testing.T) {
	s := newTestStorage(t)
	seedChat(t, s, -1001, 90)

	require.NoError(t, s.AddChatAdmin(-1001, 100))
	require.NoError(t, s.AddChatAdmin(-1001, 200))
	// duplicate is a no-op
	require.NoError(t, s.AddChatAdmin(-1001, 100))

	admins, err := s.ListChatAdmins(-1001)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, admins)

	require.NoError(t, s.RemoveChatAdmin(-1001, 100))
	admins, err = s.ListChatAdmins(-1001)
	require.NoError(t, err)
	assert.Equal(t, []int64{200}, admins)
}

func TestQueryDueEventsWindow(t *testing.T) {
	s := newTestStorage(t)
	seedChat(t, s, -1001, 90)
	emp := seedEmployee(t, s, -1001, "Иванов")

	today := date(2026, 3, 10)

	inside := seedEvent(t, s, -1001, emp.ID, date(2026, 3, 20))      // +10
	atEdge := seedEvent(t, s, -1001, emp.ID, date(2026, 6, 8))       // +90
	beyond := seedEvent(t, s, -1001, emp.ID, date(2026, 6, 9))       // +91, out
	staleOverdue := seedEvent(t, s, -1001, emp.ID, date(2025, 1, 1)) // long overdue, still in

	events, err := s.QueryDueEvents(today)
	require.NoError(t, err)

	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.EventID)
	}
	assert.Equal(t, []int64{staleOverdue.ID, inside.ID, atEdge.ID}, ids, "due-date ascending, no lower bound")
	assert.NotContains(t, ids, beyond.ID)

	// join carries employee and chat settings
	first := events[0]
	assert.Equal(t, "Иванов", first.EmployeeName)
	assert.Equal(t, "слесарь", first.Position)
	assert.Equal(t, int64(100), first.AdminID)
	assert.Equal(t, 90, first.NotificationDays)
}

func TestQueryDueEventsPerChatWindow(t *testing.T) {
	s := newTestStorage(t)
	seedChat(t, s, -1001, 90)
	seedChat(t, s, -1002, 30)
	a := seedEmployee(t, s, -1001, "Иванов")
	b := seedEmployee(t, s, -1002, "Петров")

	today := date(2026, 3, 10)
	due := date(2026, 4, 24) // +45

	inWide := seedEvent(t, s, -1001, a.ID, due)
	seedEvent(t, s, -1002, b.ID, due) // outside the 30-day chat window

	events, err := s.QueryDueEvents(today)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, inWide.ID, events[0].EventID)
}

func TestResolvedEventsLeaveSweep(t *testing.T) {
	s := newTestStorage(t)
	seedChat(t, s, -1001, 90)
	emp := seedEmployee(t, s, -1001, "Иванов")

	today := date(2026, 3, 10)
	ev := seedEvent(t, s, -1001, emp.ID, date(2026, 3, 5))

	events, err := s.QueryDueEvents(today)
	require.NoError(t, err)
	require.Len(t, events, 1)

	// rolling the due date forward moves it out of the window
	require.NoError(t, s.RollEventDueDate(ev.ID, today.AddDate(0, 0, 365)))
	events, err = s.QueryDueEvents(today)
	require.NoError(t, err)
	assert.Empty(t, events)

	got, err := s.GetEvent(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2027, 3, 10), got.DueDate)

	// archiving removes it entirely
	require.NoError(t, s.ArchiveEvent(ev.ID))
	all, err := s.ListChatEvents(-1001)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteEmployeeCascades(t *testing.T) {
	s := newTestStorage(t)
	seedChat(t, s, -1001, 90)
	emp := seedEmployee(t, s, -1001, "Иванов")
	ev := seedEvent(t, s, -1001, emp.ID, date(2026, 3, 10))

	require.NoError(t, s.DeleteEmployee(emp.ID))

	got, err := s.GetEvent(ev.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	left, err := s.ListEmployeesByChat(-1001)
	require.NoError(t, err)
	assert.Empty(t, left)
}
