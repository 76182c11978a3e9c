package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tazhate/complybot/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			chat_id INTEGER PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			admin_id INTEGER NOT NULL,
			notification_days INTEGER NOT NULL DEFAULT 90,
			timezone TEXT NOT NULL DEFAULT 'Europe/Moscow',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			position TEXT DEFAULT '',
			telegram_id INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (chat_id) REFERENCES chats(chat_id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL,
			employee_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			due_date DATE NOT NULL,
			interval_days INTEGER NOT NULL,
			resolved_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (chat_id) REFERENCES chats(chat_id),
			FOREIGN KEY (employee_id) REFERENCES employees(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS chat_admins (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL,
			telegram_id INTEGER NOT NULL,
			added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (chat_id, telegram_id),
			FOREIGN KEY (chat_id) REFERENCES chats(chat_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_employees_chat_id ON employees(chat_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_chat_id ON events(chat_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_due_date ON events(due_date)`,
		`CREATE INDEX IF NOT EXISTS idx_events_resolved ON events(resolved_at)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_admins_chat ON chat_admins(chat_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// Ignore "duplicate column" errors for ALTER TABLE
			if !strings.Contains(err.Error(), "duplicate column") {
				return fmt.Errorf("exec migration: %w", err)
			}
		}
	}
	return nil
}

const dateLayout = "2006-01-02"

// === Chats ===

func (s *Storage) CreateChat(c *domain.Chat) error {
	_, err := s.db.Exec(
		`INSERT INTO chats (chat_id, title, admin_id, notification_days, timezone) VALUES (?, ?, ?, ?, ?)`,
		c.ChatID, c.Title, c.AdminID, c.NotificationDays, c.Timezone,
	)
	if err != nil {
		return err
	}
	c.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetChat(chatID int64) (*domain.Chat, error) {
	c := &domain.Chat{}
	err := s.db.QueryRow(
		`SELECT chat_id, title, admin_id, notification_days, timezone, created_at FROM chats WHERE chat_id = ?`,
		chatID,
	).Scan(&c.ChatID, &c.Title, &c.AdminID, &c.NotificationDays, &c.Timezone, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (s *Storage) UpdateChatNotificationDays(chatID int64, days int) error {
	_, err := s.db.Exec(`UPDATE chats SET notification_days = ? WHERE chat_id = ?`, days, chatID)
	return err
}

// === Chat admins ===

func (s *Storage) AddChatAdmin(chatID, telegramID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO chat_admins (chat_id, telegram_id) VALUES (?, ?)`,
		chatID, telegramID,
	)
	return err
}

func (s *Storage) RemoveChatAdmin(chatID, telegramID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM chat_admins WHERE chat_id = ? AND telegram_id = ?`,
		chatID, telegramID,
	)
	return err
}

func (s *Storage) ListChatAdmins(chatID int64) ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT telegram_id FROM chat_admins WHERE chat_id = ? ORDER BY added_at, id`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		admins = append(admins, id)
	}
	return admins, rows.Err()
}

// === Employees ===

func (s *Storage) CreateEmployee(e *domain.Employee) error {
	res, err := s.db.Exec(
		`INSERT INTO employees (chat_id, name, position, telegram_id) VALUES (?, ?, ?, ?)`,
		e.ChatID, e.Name, e.Position, e.TelegramID,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	e.ID = id
	e.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetEmployee(id int64) (*domain.Employee, error) {
	e := &domain.Employee{}
	err := s.db.QueryRow(
		`SELECT id, chat_id, name, position, telegram_id, created_at FROM employees WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.ChatID, &e.Name, &e.Position, &e.TelegramID, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (s *Storage) ListEmployeesByChat(chatID int64) ([]*domain.Employee, error) {
	rows, err := s.db.Query(
		`SELECT id, chat_id, name, position, telegram_id, created_at FROM employees WHERE chat_id = ? ORDER BY id`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*domain.Employee
	for rows.Next() {
		e := &domain.Employee{}
		if err := rows.Scan(&e.ID, &e.ChatID, &e.Name, &e.Position, &e.TelegramID, &e.CreatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Storage) DeleteEmployee(id int64) error {
	_, err := s.db.Exec(`DELETE FROM employees WHERE id = ?`, id)
	return err
}

// === Events ===

func (s *Storage) CreateEvent(e *domain.Event) error {
	res, err := s.db.Exec(
		`INSERT INTO events (chat_id, employee_id, kind, due_date, interval_days) VALUES (?, ?, ?, ?, ?)`,
		e.ChatID, e.EmployeeID, e.Kind, e.DueDate.Format(dateLayout), e.IntervalDays,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	e.ID = id
	e.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetEvent(id int64) (*domain.Event, error) {
	e := &domain.Event{}
	err := s.db.QueryRow(
		`SELECT id, chat_id, employee_id, kind, due_date, interval_days, resolved_at, created_at FROM events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.ChatID, &e.EmployeeID, &e.Kind, &e.DueDate, &e.IntervalDays, &e.ResolvedAt, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// RollEventDueDate moves an unresolved event to its next cycle.
func (s *Storage) RollEventDueDate(id int64, due time.Time) error {
	_, err := s.db.Exec(`UPDATE events SET due_date = ? WHERE id = ?`, due.Format(dateLayout), id)
	return err
}

// ArchiveEvent soft-deletes an event: archived rows never enter a sweep.
func (s *Storage) ArchiveEvent(id int64) error {
	_, err := s.db.Exec(`UPDATE events SET resolved_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// QueryDueEvents returns the sweep working set: every unresolved event
// joined with its employee and chat settings, whose due date is no later
// than today plus the chat's notification lead. There is no lower bound:
// an event stays a candidate however long overdue it is, until it is
// resolved or archived.
func (s *Storage) QueryDueEvents(today time.Time) ([]*domain.DueEvent, error) {
	rows, err := s.db.Query(
		`SELECT e.id, e.chat_id, e.employee_id, e.kind, e.due_date, e.interval_days,
			emp.name, emp.position, emp.telegram_id,
			c.admin_id, c.notification_days, c.timezone
		FROM events e
		JOIN employees emp ON emp.id = e.employee_id
		JOIN chats c ON c.chat_id = e.chat_id
		WHERE e.resolved_at IS NULL
		  AND e.due_date <= date(?, '+' || c.notification_days || ' days')
		ORDER BY e.due_date ASC, e.id ASC`,
		today.Format(dateLayout),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDueEvents(rows)
}

// ListChatEvents returns all unresolved events of one chat with the same
// join shape as the sweep query (used by lists and exports).
func (s *Storage) ListChatEvents(chatID int64) ([]*domain.DueEvent, error) {
	rows, err := s.db.Query(
		`SELECT e.id, e.chat_id, e.employee_id, e.kind, e.due_date, e.interval_days,
			emp.name, emp.position, emp.telegram_id,
			c.admin_id, c.notification_days, c.timezone
		FROM events e
		JOIN employees emp ON emp.id = e.employee_id
		JOIN chats c ON c.chat_id = e.chat_id
		WHERE e.resolved_at IS NULL AND e.chat_id = ?
		ORDER BY e.due_date ASC, e.id ASC`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDueEvents(rows)
}

func scanDueEvents(rows *sql.Rows) ([]*domain.DueEvent, error) {
	var events []*domain.DueEvent
	for rows.Next() {
		ev := &domain.DueEvent{}
		if err := rows.Scan(
			&ev.EventID, &ev.ChatID, &ev.EmployeeID, &ev.Kind, &ev.DueDate, &ev.IntervalDays,
			&ev.EmployeeName, &ev.Position, &ev.EmployeeTgID,
			&ev.AdminID, &ev.NotificationDays, &ev.Timezone,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
