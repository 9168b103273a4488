package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/geoattend/attendance-backend-go/internal/domain/notification"
	"github.com/geoattend/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// Create implements notification.Repository.
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notifications (id, type, title, message, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING is_active, created_at
	`

	err := q.QueryRow(ctx, query, n.ID, n.Type, n.Title, n.Message, n.CreatedBy).Scan(&n.IsActive, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID implements notification.Repository.
func (r *notificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, type, title, message, created_by, read_by, is_active, created_at
		FROM notifications
		WHERE id = $1
	`

	var n notification.Notification
	err := q.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.Type, &n.Title, &n.Message, &n.CreatedBy, &n.ReadBy, &n.IsActive, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &n, nil
}

// List implements notification.Repository.
func (r *notificationRepository) List(ctx context.Context, onlyActive bool) ([]*notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, type, title, message, created_by, read_by, is_active, created_at
		FROM notifications
	`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.CreatedBy, &n.ReadBy, &n.IsActive, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// GetLatestActive implements notification.Repository.
func (r *notificationRepository) GetLatestActive(ctx context.Context) (*notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, type, title, message, created_by, read_by, is_active, created_at
		FROM notifications
		WHERE is_active
		ORDER BY created_at DESC
		LIMIT 1
	`

	var n notification.Notification
	err := q.QueryRow(ctx, query).Scan(
		&n.ID, &n.Type, &n.Title, &n.Message, &n.CreatedBy, &n.ReadBy, &n.IsActive, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get latest notification: %w", err)
	}

	return &n, nil
}

// MarkAsRead implements notification.Repository.
// Appending the same reader twice is a no-op. The update and the
// existence check run in one transaction so they see the same rows.
func (r *notificationRepository) MarkAsRead(ctx context.Context, id string, userID string) error {
	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		query := `
			UPDATE notifications
			SET read_by = array_append(read_by, $2)
			WHERE id = $1 AND NOT ($2 = ANY(read_by))
		`

		tag, err := q.Exec(txCtx, query, id, userID)
		if err != nil {
			return fmt.Errorf("failed to mark notification as read: %w", err)
		}

		if tag.RowsAffected() == 0 {
			var exists bool
			if err := q.QueryRow(txCtx, `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1)`, id).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check notification existence: %w", err)
			}
			if !exists {
				return notification.ErrNotificationNotFound
			}
		}

		return nil
	})
}

// CountUnread implements notification.Repository.
func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE is_active AND NOT ($1 = ANY(read_by))`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// SetActive implements notification.Repository.
func (r *notificationRepository) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE notifications SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}

// Delete implements notification.Repository.
func (r *notificationRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}

// PruneToLatest implements notification.Repository.
func (r *notificationRepository) PruneToLatest(ctx context.Context, keep int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM notifications
		WHERE id NOT IN (
			SELECT id FROM notifications
			ORDER BY created_at DESC
			LIMIT $1
		)
	`

	tag, err := q.Exec(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}

	return int(tag.RowsAffected()), nil
}
