package service

import (
	"fmt"
	"strings"

	"github.com/tazhate/complybot/internal/crypto"
	"github.com/tazhate/complybot/internal/domain"
	"github.com/tazhate/complybot/internal/storage"
)

// EmployeeService manages the people tracked in a chat. Names and
// positions pass through the PII box on the way to and from storage.
type EmployeeService struct {
	storage *storage.Storage
	box     *crypto.Box
}

func NewEmployeeService(s *storage.Storage, box *crypto.Box) *EmployeeService {
	return &EmployeeService{storage: s, box: box}
}

func (s *EmployeeService) Add(chatID int64, name, position string, telegramID int64) (*domain.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("employee name cannot be empty")
	}
	position = strings.TrimSpace(position)

	encName, err := s.box.Encrypt(name)
	if err != nil {
		return nil, fmt.Errorf("encrypt name: %w", err)
	}
	encPosition, err := s.box.Encrypt(position)
	if err != nil {
		return nil, fmt.Errorf("encrypt position: %w", err)
	}

	emp := &domain.Employee{
		ChatID:     chatID,
		Name:       encName,
		Position:   encPosition,
		TelegramID: telegramID,
	}
	if err := s.storage.CreateEmployee(emp); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}

	emp.Name = name
	emp.Position = position
	return emp, nil
}

func (s *EmployeeService) Get(id int64) (*domain.Employee, error) {
	emp, err := s.storage.GetEmployee(id)
	if err != nil || emp == nil {
		return emp, err
	}
	s.reveal(emp)
	return emp, nil
}

func (s *EmployeeService) List(chatID int64) ([]*domain.Employee, error) {
	employees, err := s.storage.ListEmployeesByChat(chatID)
	if err != nil {
		return nil, err
	}
	for _, emp := range employees {
		s.reveal(emp)
	}
	return employees, nil
}

func (s *EmployeeService) Delete(id, chatID int64) error {
	emp, err := s.storage.GetEmployee(id)
	if err != nil {
		return fmt.Errorf("get employee: %w", err)
	}
	if emp == nil || emp.ChatID != chatID {
		return fmt.Errorf("employee not found")
	}
	return s.storage.DeleteEmployee(id)
}

func (s *EmployeeService) FormatStaffList(employees []*domain.Employee) string {
	if len(employees) == 0 {
		return "Сотрудники не добавлены"
	}

	var sb strings.Builder
	for _, emp := range employees {
		if emp.Position != "" {
			sb.WriteString(fmt.Sprintf("#%d %s — %s\n", emp.ID, emp.DisplayName(), emp.Position))
		} else {
			sb.WriteString(fmt.Sprintf("#%d %s\n", emp.ID, emp.DisplayName()))
		}
	}
	return sb.String()
}

// reveal decrypts PII fields in place; an undecryptable value is shown
// as a placeholder instead of failing the whole listing.
func (s *EmployeeService) reveal(emp *domain.Employee) {
	emp.Name = decryptOr(s.box, emp.Name)
	emp.Position = decryptOr(s.box, emp.Position)
}

func decryptOr(box *crypto.Box, value string) string {
	out, err := box.Decrypt(value)
	if err != nil {
		return "(недоступно)"
	}
	return out
}
