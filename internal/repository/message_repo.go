package repository

import (
	"fmt"
	"time"

	"github.com/christianmesinas/famplan/internal/database"
	"github.com/christianmesinas/famplan/internal/models"
)

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db *database.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *database.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateMessage inserts a direct message
func (r *MessageRepository) CreateMessage(senderID, recipientID int64, body string) (*models.Message, error) {
	query := `
		INSERT INTO messages (sender_id, recipient_id, body)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, senderID, recipientID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return &models.Message{
		ID:          id,
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// InboxPage returns one reverse-chronological page of received messages
func (r *MessageRepository) InboxPage(recipientID int64, limit, offset int) ([]models.InboxMessage, error) {
	query := `
		SELECT m.id, m.sender_id, m.recipient_id, m.body, m.created_at, u.username
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.recipient_id = ?
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, recipientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query inbox: %w", err)
	}
	defer rows.Close()

	var messages []models.InboxMessage
	for rows.Next() {
		var m models.InboxMessage
		err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.CreatedAt, &m.SenderUsername)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountUnread returns the number of messages received after the
// watermark. A nil watermark counts everything.
func (r *MessageRepository) CountUnread(recipientID int64, watermark *time.Time) (int, error) {
	since := time.Unix(0, 0).UTC()
	if watermark != nil {
		since = watermark.UTC()
	}

	var count int
	query := "SELECT COUNT(*) FROM messages WHERE recipient_id = ? AND created_at > ?"
	if err := r.db.QueryRow(query, recipientID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread: %w", err)
	}
	return count, nil
}
