package notification

import (
	"time"

	"github.com/geoattend/attendance-backend-go/internal/pkg/validator"
)

// CreateNotificationRequest creates a new broadcast (admin only)
type CreateNotificationRequest struct {
	CreatedBy string `json:"-"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}

func (r *CreateNotificationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	} else if len(r.Title) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 255 characters",
		})
	}

	if validator.IsEmpty(r.Message) {
		errs = append(errs, validator.ValidationError{
			Field:   "message",
			Message: "message is required",
		})
	}

	if validator.IsEmpty(r.Type) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is required",
		})
	} else {
		validTypes := []string{string(TypeAnnouncement), string(TypePolicy)}
		if !validator.IsInSlice(r.Type, validTypes) {
			errs = append(errs, validator.ValidationError{
				Field:   "type",
				Message: "type must be one of: announcement, policy",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// NotificationResponse represents a notification in API responses.
// IsRead is computed per caller from ReadBy.
type NotificationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts a Notification to its API representation for a caller
func (n *Notification) ToResponse(userID string) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsReadBy(userID),
		IsActive:  n.IsActive,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

// NotificationListResponse bundles the visible broadcasts with the
// caller's unread count
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

// SSEEvent is pushed to connected clients when a broadcast is created
type SSEEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
