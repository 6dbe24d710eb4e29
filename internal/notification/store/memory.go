package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"fantasy/internal/notification"
	id "fantasy/pkg/domain"
	"fantasy/pkg/platform/sentinel"
)

// InMemory keeps each user's newest notifications in process memory.
type InMemory struct {
	mu    sync.RWMutex
	limit int
	inbox map[id.UserID][]notification.Notification
}

func NewInMemory() *InMemory {
	return &InMemory{
		limit: notification.InboxLimit,
		inbox: make(map[id.UserID][]notification.Notification),
	}
}

func (s *InMemory) Save(_ context.Context, n notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := append(s.inbox[n.UserID], n)
	slices.SortStableFunc(items, func(a, b notification.Notification) int {
		return cmp.Compare(b.CreatedAt.UnixMilli(), a.CreatedAt.UnixMilli())
	})
	if len(items) > s.limit {
		items = items[:s.limit]
	}
	s.inbox[n.UserID] = items
	return nil
}

func (s *InMemory) List(_ context.Context, userID id.UserID, unreadOnly bool) ([]notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]notification.Notification, 0, len(s.inbox[userID]))
	for _, n := range s.inbox[userID] {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *InMemory) MarkRead(_ context.Context, userID id.UserID, notificationID id.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.inbox[userID]
	for i := range items {
		if items[i].ID == notificationID {
			items[i].Read = true
			return nil
		}
	}
	return sentinel.ErrNotFound
}
