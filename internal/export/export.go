package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/tazhate/complybot/internal/domain"
)

// EventsCSV renders the chat's unresolved events as a CSV document for
// sending over the chat transport.
func EventsCSV(events []*domain.DueEvent, today time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "сотрудник", "должность", "вид", "срок", "дней до срока", "статус"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, ev := range events {
		days := domain.DaysBetween(today, ev.DueDate)
		tier := domain.ClassifyDays(days)
		row := []string{
			fmt.Sprintf("%d", ev.EventID),
			ev.EmployeeName,
			ev.Position,
			ev.Kind,
			ev.DueDate.Format("02.01.2006"),
			fmt.Sprintf("%d", days),
			string(tier),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write event %d: %w", ev.EventID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// EventsICS renders due dates as an iCalendar document: one all-day
// VEVENT per unresolved event, importable into any calendar app.
func EventsICS(events []*domain.DueEvent) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//ComplyBot//Events//RU")

	for _, ev := range events {
		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, fmt.Sprintf("event-%d@complybot", ev.EventID))
		vevent.Props.SetText(ical.PropSummary, fmt.Sprintf("%s — %s", ev.Kind, ev.EmployeeName))
		if ev.Position != "" {
			vevent.Props.SetText(ical.PropDescription, ev.Position)
		}
		vevent.Props.SetDate(ical.PropDateTimeStart, ev.DueDate)
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
		cal.Children = append(cal.Children, vevent.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}
