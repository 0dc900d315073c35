package repository

import (
	"fmt"

	"github.com/christianmesinas/famplan/internal/database"
	"github.com/christianmesinas/famplan/internal/models"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Upsert replaces the named notification for a user: the old row is
// deleted and a fresh one inserted so its timestamp moves forward.
// Both writes happen in one transaction.
func (r *NotificationRepository) Upsert(userID int64, name, payloadJSON string, timestamp float64) (*models.Notification, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"DELETE FROM notifications WHERE user_id = ? AND name = ?",
		userID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete notification: %w", err)
	}

	id, err := tx.ExecReturningID(
		"INSERT INTO notifications (user_id, name, payload_json, timestamp) VALUES (?, ?, ?, ?)",
		userID, name, payloadJSON, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit notification: %w", err)
	}

	return &models.Notification{
		ID:          id,
		UserID:      userID,
		Name:        name,
		PayloadJSON: payloadJSON,
		Timestamp:   timestamp,
	}, nil
}

// ListSince returns a user's notifications newer than the given float
// timestamp, oldest first.
func (r *NotificationRepository) ListSince(userID int64, since float64) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, name, payload_json, timestamp
		FROM notifications
		WHERE user_id = ? AND timestamp > ?
		ORDER BY timestamp ASC
	`
	rows, err := r.db.Query(query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Name, &n.PayloadJSON, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// DeleteOlderThan prunes notifications with a timestamp before cutoff
func (r *NotificationRepository) DeleteOlderThan(cutoff float64) (int64, error) {
	query := "DELETE FROM notifications WHERE timestamp < ?"
	result, err := r.db.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}
	return result.RowsAffected()
}
