package domain

import "time"

// Employee is a tracked person within one work chat. Name and position
// may be stored encrypted at rest; services hand them out decrypted.
type Employee struct {
	ID         int64
	ChatID     int64
	Name       string
	Position   string
	TelegramID int64 // 0 если не привязан
	CreatedAt  time.Time
}

// DisplayName returns the name or a placeholder when it is missing.
func (e *Employee) DisplayName() string {
	if e.Name == "" {
		return "(без имени)"
	}
	return e.Name
}
