package notify

import (
	"context"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
)

// HubSink pushes notifications to the user's WebSocket clients
type HubSink struct {
	publisher websocket.EventPublisher
}

// NewHubSink creates a new HubSink
func NewHubSink(publisher websocket.EventPublisher) *HubSink {
	return &HubSink{publisher: publisher}
}

// Show implements domain.NotificationSink.
// Notifications without an acting user are dropped.
func (s *HubSink) Show(ctx context.Context, n domain.Notification) {
	userID := domain.UserIDFromContext(ctx)
	if userID == "" {
		return
	}
	s.publisher.Publish(userID, websocket.NotificationCreated(n))
}
