package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geoattend/attendance-backend-go/internal/domain/notification"
	"github.com/geoattend/attendance-backend-go/internal/pkg/sse"
	"github.com/google/uuid"
)

// RetainLatest is how many broadcasts survive a prune
const RetainLatest = 5

type NotificationServiceImpl struct {
	repo notification.Repository
	hub  *sse.Hub
}

func NewNotificationService(repo notification.Repository, hub *sse.Hub) notification.Service {
	return &NotificationServiceImpl{
		repo: repo,
		hub:  hub,
	}
}

// Create implements notification.Service.
func (s *NotificationServiceImpl) Create(ctx context.Context, req notification.CreateNotificationRequest) (notification.NotificationResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.NotificationResponse{}, err
	}

	n := &notification.Notification{
		ID:        uuid.New().String(),
		Type:      notification.NotificationType(req.Type),
		Title:     req.Title,
		Message:   req.Message,
		CreatedBy: req.CreatedBy,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return notification.NotificationResponse{}, fmt.Errorf("failed to create notification: %w", err)
	}

	// Retention is best-effort; a failed prune never fails the create
	if _, err := s.repo.PruneToLatest(ctx, RetainLatest); err != nil {
		slog.Warn("Failed to prune notifications", "error", err)
	}

	resp := n.ToResponse(req.CreatedBy)
	s.hub.Broadcast(sse.Event{
		Event: "notification",
		Data:  resp,
	})

	return resp, nil
}

// List implements notification.Service.
// Only active broadcasts are listed; deactivated ones stay in the table
// but are no longer shown.
func (s *NotificationServiceImpl) List(ctx context.Context, userID string) (notification.NotificationListResponse, error) {
	notifications, err := s.repo.List(ctx, true)
	if err != nil {
		return notification.NotificationListResponse{}, fmt.Errorf("failed to list notifications: %w", err)
	}

	responses := make([]notification.NotificationResponse, 0, len(notifications))
	unread := 0
	for _, n := range notifications {
		resp := n.ToResponse(userID)
		if !resp.IsRead {
			unread++
		}
		responses = append(responses, resp)
	}

	return notification.NotificationListResponse{
		Notifications: responses,
		UnreadCount:   unread,
	}, nil
}

// GetLatestActive implements notification.Service.
func (s *NotificationServiceImpl) GetLatestActive(ctx context.Context, userID string) (notification.NotificationResponse, error) {
	n, err := s.repo.GetLatestActive(ctx)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return notification.NotificationResponse{}, notification.ErrNotificationNotFound
		}
		return notification.NotificationResponse{}, fmt.Errorf("failed to get latest notification: %w", err)
	}
	return n.ToResponse(userID), nil
}

// MarkAsRead implements notification.Service.
func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, userID string, notificationID string) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return notification.ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// UnreadCount implements notification.Service.
func (s *NotificationServiceImpl) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// Deactivate implements notification.Service.
func (s *NotificationServiceImpl) Deactivate(ctx context.Context, notificationID string) error {
	if err := s.repo.SetActive(ctx, notificationID, false); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return notification.ErrNotificationNotFound
		}
		return fmt.Errorf("failed to deactivate notification: %w", err)
	}
	return nil
}

// Delete implements notification.Service.
func (s *NotificationServiceImpl) Delete(ctx context.Context, notificationID string) error {
	if err := s.repo.Delete(ctx, notificationID); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return notification.ErrNotificationNotFound
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// Prune implements notification.Service.
func (s *NotificationServiceImpl) Prune(ctx context.Context) (int, error) {
	return s.repo.PruneToLatest(ctx, RetainLatest)
}

// Subscribe implements notification.Service.
func (s *NotificationServiceImpl) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)
	go func() {
		defer close(out)
		for ev := range ch {
			select {
			case out <- notification.SSEEvent{Event: ev.Event, Data: ev.Data}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}
