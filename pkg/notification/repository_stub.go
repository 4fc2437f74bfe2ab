package notification

import (
	"context"
	"sort"
	"time"
)

type StubRepository struct {
	nextId int
	data   map[int]Notification
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[int]Notification{}}
}

func (s *StubRepository) Store(ctx context.Context, notification Notification) (int, error) {
	s.nextId++
	notification.Id = s.nextId
	notification.CreatedAt = time.Now()
	s.data[notification.Id] = notification
	return notification.Id, nil
}

func (s *StubRepository) ListForUser(ctx context.Context, userId int) ([]Notification, error) {
	var notifications []Notification
	for _, n := range s.data {
		if n.UserId == userId {
			notifications = append(notifications, n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].Id > notifications[j].Id
	})
	return notifications, nil
}

func (s *StubRepository) MarkAllRead(ctx context.Context, userId int) (int, error) {
	updated := 0
	for id, n := range s.data {
		if n.UserId == userId && !n.Read {
			n.Read = true
			s.data[id] = n
			updated++
		}
	}
	return updated, nil
}

func (s *StubRepository) Cleanup() {
	s.nextId = 0
	s.data = map[int]Notification{}
}
