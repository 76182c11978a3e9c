package notify

import (
	"fmt"
	"time"

	"github.com/tazhate/complybot/internal/domain"
)

type delivery struct {
	to   int64
	text string
}

type fakeSender struct {
	deliveries []delivery
	failFor    map[int64]bool
}

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	if f.failFor[chatID] {
		return fmt.Errorf("forbidden: bot was blocked by the user")
	}
	f.deliveries = append(f.deliveries, delivery{to: chatID, text: text})
	return nil
}

func (f *fakeSender) sentTo(chatID int64) []string {
	var texts []string
	for _, d := range f.deliveries {
		if d.to == chatID {
			texts = append(texts, d.text)
		}
	}
	return texts
}

type fakeStore struct {
	events    []*domain.DueEvent
	queryErr  error
	admins    map[int64][]int64
	adminsErr error
}

func (f *fakeStore) QueryDueEvents(today time.Time) ([]*domain.DueEvent, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.events, nil
}

func (f *fakeStore) ListChatAdmins(chatID int64) ([]int64, error) {
	if f.adminsErr != nil {
		return nil, f.adminsErr
	}
	return f.admins[chatID], nil
}
