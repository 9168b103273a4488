package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	Create(ctx context.Context, req CreateNotificationRequest) (NotificationResponse, error)
	List(ctx context.Context, userID string) (NotificationListResponse, error)
	GetLatestActive(ctx context.Context, userID string) (NotificationResponse, error)
	MarkAsRead(ctx context.Context, userID string, notificationID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
	Deactivate(ctx context.Context, notificationID string) error
	Delete(ctx context.Context, notificationID string) error

	// Prune enforces the retention window, keeping only the newest broadcasts
	Prune(ctx context.Context) (int, error)

	// Subscribe registers an SSE listener for broadcast pushes
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())
}
