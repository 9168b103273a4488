package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeAnnouncement NotificationType = "announcement"
	TypePolicy       NotificationType = "policy"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeAnnouncement,
		TypePolicy,
	}
}

// Notification is a broadcast visible to every user. ReadBy tracks which
// users have acknowledged it. A deactivated broadcast stays in the table
// for the admin but is hidden from employee listings.
type Notification struct {
	ID        string
	Type      NotificationType
	Title     string
	Message   string
	CreatedBy string
	ReadBy    []string
	IsActive  bool
	CreatedAt time.Time
}

// IsReadBy reports whether the given user has read this notification
func (n *Notification) IsReadBy(userID string) bool {
	for _, id := range n.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
