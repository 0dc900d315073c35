package models

import "encoding/json"

// Notification is a named per-user notification. Timestamp is float
// seconds since the Unix epoch so clients can poll with a high-resolution
// "since" watermark. Updating a notification deletes the old row by name
// and reinserts, so the timestamp always reflects the latest change.
type Notification struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"-"`
	Name        string  `json:"name"`
	PayloadJSON string  `json:"-"`
	Timestamp   float64 `json:"timestamp"`
}

// Data decodes the notification payload
func (n *Notification) Data() (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(n.PayloadJSON), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Notification names
const (
	NotificationUnreadMessageCount = "unread_message_count"
)
