package notify

import (
	"fmt"
	"log"
	"time"

	"github.com/tazhate/complybot/internal/domain"
)

// Store is the read side of persistence the sweep needs: one snapshot
// query at the top of each run.
type Store interface {
	QueryDueEvents(today time.Time) ([]*domain.DueEvent, error)
}

// Result aggregates one sweep run for logging.
type Result struct {
	Sent      int // completed ordinary deliveries (employee + admin)
	Escalated int // completed escalation deliveries
}

// Sweep walks the due-event snapshot and pushes reminders. It holds no
// state between runs: every decision is recomputed from due dates, so a
// crashed or skipped run needs no recovery.
type Sweep struct {
	store  Store
	sender Sender
	router *Router
	tz     *time.Location
	now    func() time.Time
}

func NewSweep(store Store, sender Sender, router *Router, tz *time.Location) *Sweep {
	return &Sweep{
		store:  store,
		sender: sender,
		router: router,
		tz:     tz,
		now:    time.Now,
	}
}

// Run executes one notification sweep. Both cron cadences (daily and the
// 12-hour catch-up) call this; overdue and critical events firing twice
// on the same day is accepted behavior.
func (s *Sweep) Run() Result {
	now := s.now().In(s.tz)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	events, err := s.store.QueryDueEvents(today)
	if err != nil {
		log.Printf("Sweep aborted: query due events: %v", err)
		return Result{}
	}
	if len(events) == 0 {
		return Result{}
	}

	var res Result
	for _, ev := range events {
		sent, escalated, err := s.process(ev, today)
		if err != nil {
			// one bad row must not starve the rest of the batch
			log.Printf("Sweep: event %d: %v", ev.EventID, err)
			continue
		}
		res.Sent += sent
		res.Escalated += escalated
	}

	log.Printf("Sweep finished: %d events checked, %d sent, %d escalated",
		len(events), res.Sent, res.Escalated)
	return res
}

func (s *Sweep) process(ev *domain.DueEvent, today time.Time) (sent, escalated int, err error) {
	if ev.DueDate.IsZero() {
		return 0, 0, fmt.Errorf("missing due date")
	}

	days := domain.DaysBetween(today, ev.DueDate)
	tier := domain.ClassifyDays(days)
	if !ShouldFire(tier, days, ev.NotificationDays) {
		return 0, 0, nil
	}

	text := Format(ev, tier, days)

	// Employee copy is best-effort: a blocked or unlinked employee must
	// not block the admin copy.
	if ev.EmployeeTgID != 0 {
		if err := s.sender.SendMessage(ev.EmployeeTgID, text); err != nil {
			log.Printf("Error sending event %d to employee %d: %v", ev.EventID, ev.EmployeeTgID, err)
		} else {
			sent++
		}
	}

	if ev.AdminID != 0 {
		if err := s.sender.SendMessage(ev.AdminID, text); err != nil {
			log.Printf("Error sending event %d to admin %d: %v", ev.EventID, ev.AdminID, err)
		} else {
			sent++
		}
	}

	if tier.Escalates() {
		escalated = s.router.Escalate(ev, tier, text)
	}

	return sent, escalated, nil
}
