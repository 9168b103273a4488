package notification

import (
	"context"
)

// Repository defines the notification repository interface
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	List(ctx context.Context, onlyActive bool) ([]*Notification, error)

	// GetLatestActive returns the newest active broadcast, or
	// ErrNotificationNotFound when none is active
	GetLatestActive(ctx context.Context) (*Notification, error)

	MarkAsRead(ctx context.Context, id string, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error

	// PruneToLatest deletes all but the newest keep broadcasts and
	// returns how many were removed
	PruneToLatest(ctx context.Context, keep int) (int, error)
}
