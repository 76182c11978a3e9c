package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhate/complybot/internal/domain"
)

func sampleEvents() []*domain.DueEvent {
	return []*domain.DueEvent{
		{
			EventID:      1,
			EmployeeName: "Иванов Иван",
			Position:     "слесарь",
			Kind:         "медосмотр",
			DueDate:      time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			EventID:      2,
			EmployeeName: "Петров Пётр",
			Kind:         "инструктаж",
			DueDate:      time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestEventsCSV(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	data, err := EventsCSV(sampleEvents(), today)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header + 2 events")

	assert.Equal(t, []string{"1", "Иванов Иван", "слесарь", "медосмотр", "05.03.2026", "-5", "overdue"}, rows[1])
	assert.Equal(t, "41", rows[2][5])
	assert.Equal(t, "info", rows[2][6])
}

func TestEventsCSVEmpty(t *testing.T) {
	data, err := EventsCSV(nil, time.Now())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

func TestEventsICS(t *testing.T) {
	data, err := EventsICS(sampleEvents())
	require.NoError(t, err)

	text := string(data)
	assert.Equal(t, 2, strings.Count(text, "BEGIN:VEVENT"))
	assert.Contains(t, text, "UID:event-1@complybot")
	assert.Contains(t, text, "DTSTART;VALUE=DATE:20260305")
	assert.Contains(t, text, "медосмотр — Иванов Иван")
}
