package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhate/complybot/internal/domain"
)

var sweepNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestSweep(store *fakeStore, sender *fakeSender) *Sweep {
	s := NewSweep(store, sender, NewRouter(store, sender), time.UTC)
	s.now = func() time.Time { return sweepNow }
	return s
}

func sweepEvent(id int64, due time.Time) *domain.DueEvent {
	return &domain.DueEvent{
		EventID:          id,
		ChatID:           -1001,
		Kind:             "медосмотр",
		DueDate:          due,
		EmployeeName:     "Иванов Иван",
		Position:         "слесарь",
		EmployeeTgID:     500,
		AdminID:          100,
		NotificationDays: 90,
	}
}

func TestSweepOverdueEscalates(t *testing.T) {
	// due 5 days ago: overdue, fires, escalates to both registered admins
	ev := sweepEvent(1, sweepNow.AddDate(0, 0, -5))
	store := &fakeStore{
		events: []*domain.DueEvent{ev},
		admins: map[int64][]int64{-1001: {100, 200}},
	}
	sender := &fakeSender{}

	res := newTestSweep(store, sender).Run()

	assert.Equal(t, 2, res.Sent, "employee + admin ordinary copies")
	assert.Equal(t, 2, res.Escalated)

	employee := sender.sentTo(500)
	require.Len(t, employee, 1)
	assert.Contains(t, employee[0], "просрочено")
	assert.Contains(t, employee[0], "5")

	// admin 100 gets the ordinary copy plus the escalation copy
	require.Len(t, sender.sentTo(100), 2)
	require.Len(t, sender.sentTo(200), 1)
	assert.Contains(t, sender.sentTo(200)[0], "ЭСКАЛАЦИЯ")
}

func TestSweepInfoOffLeadDayIsSilent(t *testing.T) {
	// 45 days out with a 90-day lead: candidate, but nothing fires
	store := &fakeStore{
		events: []*domain.DueEvent{sweepEvent(1, sweepNow.AddDate(0, 0, 45))},
		admins: map[int64][]int64{-1001: {100}},
	}
	sender := &fakeSender{}

	res := newTestSweep(store, sender).Run()

	assert.Equal(t, Result{}, res)
	assert.Empty(t, sender.deliveries)
}

func TestSweepFaultIsolation(t *testing.T) {
	// the malformed row in the middle must not starve its neighbors
	bad := sweepEvent(2, time.Time{})
	store := &fakeStore{
		events: []*domain.DueEvent{
			sweepEvent(1, sweepNow), // critical, fires
			bad,
			sweepEvent(3, sweepNow.AddDate(0, 0, 7)), // urgent at the mark, fires
		},
		admins: map[int64][]int64{-1001: {100}},
	}
	sender := &fakeSender{}

	res := newTestSweep(store, sender).Run()

	assert.Equal(t, 4, res.Sent, "two firing events, employee + admin each")
	assert.Equal(t, 1, res.Escalated, "only the critical one escalates")
}

func TestSweepBlockedEmployeeStillReachesAdmin(t *testing.T) {
	store := &fakeStore{
		events: []*domain.DueEvent{sweepEvent(1, sweepNow)},
		admins: map[int64][]int64{-1001: {100}},
	}
	sender := &fakeSender{failFor: map[int64]bool{500: true}}

	res := newTestSweep(store, sender).Run()

	assert.Equal(t, 1, res.Sent)
	assert.Empty(t, sender.sentTo(500))
	require.NotEmpty(t, sender.sentTo(100))
}

func TestSweepUnlinkedEmployee(t *testing.T) {
	ev := sweepEvent(1, sweepNow.AddDate(0, 0, 30)) // warning at the mark
	ev.EmployeeTgID = 0
	store := &fakeStore{events: []*domain.DueEvent{ev}}
	sender := &fakeSender{}

	res := newTestSweep(store, sender).Run()

	assert.Equal(t, 1, res.Sent, "admin copy only")
	assert.Equal(t, 0, res.Escalated)
}

func TestSweepQueryFailureAborts(t *testing.T) {
	store := &fakeStore{queryErr: fmt.Errorf("database is locked")}
	sender := &fakeSender{}

	res := newTestSweep(store, sender).Run()

	assert.Equal(t, Result{}, res)
	assert.Empty(t, sender.deliveries)
}

func TestSweepEmptyBatchIsNoOp(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}

	res := newTestSweep(store, sender).Run()

	assert.Equal(t, Result{}, res)
	assert.Empty(t, sender.deliveries)
}

func TestSweepSameDayRerunRepeats(t *testing.T) {
	// the daily and 12h cadences can both fire on the same day; the
	// decision is stateless, so the second run repeats the reminders
	store := &fakeStore{
		events: []*domain.DueEvent{sweepEvent(1, sweepNow.AddDate(0, 0, 2))},
		admins: map[int64][]int64{-1001: {100}},
	}
	sender := &fakeSender{}
	sweep := newTestSweep(store, sender)

	first := sweep.Run()
	second := sweep.Run()

	assert.Equal(t, first, second)
	assert.Len(t, sender.sentTo(500), 2)
}
