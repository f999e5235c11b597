package notify

import (
	"encoding/json"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
)

// NotificationMessage is the body published to the broker
type NotificationMessage struct {
	ID          string                  `json:"id"`
	UserID      string                  `json:"userId,omitempty"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	Type        domain.NotificationType `json:"type"`
	Timestamp   time.Time               `json:"timestamp"`
	PublishedAt time.Time               `json:"publishedAt"`
}

// NewNotificationMessage builds a message for n
func NewNotificationMessage(userID string, n domain.Notification) *NotificationMessage {
	return &NotificationMessage{
		ID:          n.ID,
		UserID:      userID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        n.Type,
		Timestamp:   n.Timestamp,
		PublishedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes a message body
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
