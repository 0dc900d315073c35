package models

import "time"

// Message is a direct message between two users
type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// InboxMessage is a message joined with the sender's username
type InboxMessage struct {
	Message
	SenderUsername string `json:"sender_username"`
}
