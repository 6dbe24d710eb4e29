// Package notification is the sink for PlayerSold events and the per-user
// inbox that serves them back.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fantasy/internal/market/models"
	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/platform/sentinel"
)

// InboxLimit bounds how many notifications are kept per user.
const InboxLimit = 100

// Store persists notifications. Save must also fan the notification out to
// live subscribers when the backend supports it.
type Store interface {
	Save(ctx context.Context, n Notification) error
	List(ctx context.Context, userID id.UserID, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// NotifyPlayerSold stores the seller's notification.
func (s *Service) NotifyPlayerSold(ctx context.Context, event models.PlayerSold) error {
	n := FromPlayerSold(event)
	if err := s.store.Save(ctx, n); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	s.logger.DebugContext(ctx, "player sold notification stored",
		"user_id", n.UserID,
		"notification_id", n.ID,
	)
	return nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID id.UserID, unreadOnly bool) ([]Notification, error) {
	items, err := s.store.List(ctx, userID, unreadOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notifications")
	}
	if items == nil {
		items = []Notification{}
	}
	return items, nil
}

func (s *Service) MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	err := s.store.MarkRead(ctx, userID, notificationID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update notification")
	}
}
