package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// Subscriber is one connection listening to a user's session events
type Subscriber interface {
	ID() string
	UserID() string
	// Send queues data without blocking
	Send(data []byte) error
	Close() error
}

// subscriberSet maps subscriber ID to subscriber
type subscriberSet map[string]Subscriber

// Hub fans session events out to the subscribers of each user.
// It is safe for concurrent use.
type Hub struct {
	users map[string]subscriberSet
	mu    sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		users: make(map[string]subscriberSet),
	}
}

// Register subscribes s to its user's events
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	set := h.users[s.UserID()]
	if set == nil {
		set = make(subscriberSet)
		h.users[s.UserID()] = set
	}
	set[s.ID()] = s
	h.mu.Unlock()

	log.Debug().Str("user_id", s.UserID()).Str("client_id", s.ID()).Msg("WebSocket client registered")
}

// Unregister removes s from the hub. It reports whether s was registered.
func (h *Hub) Unregister(s Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.users[s.UserID()]
	if !ok {
		return false
	}
	if _, ok := set[s.ID()]; !ok {
		return false
	}
	delete(set, s.ID())
	if len(set) == 0 {
		delete(h.users, s.UserID())
	}

	log.Debug().Str("user_id", s.UserID()).Str("client_id", s.ID()).Msg("WebSocket client unregistered")
	return true
}

// DisconnectUser closes and removes every subscriber of a user
func (h *Hub) DisconnectUser(userID string) {
	h.mu.Lock()
	set := h.users[userID]
	delete(h.users, userID)
	h.mu.Unlock()

	for _, s := range set {
		if err := s.Close(); err != nil {
			log.Debug().Err(err).Str("client_id", s.ID()).Msg("Failed to close client")
		}
	}
}

// Broadcast sends event to every subscriber of userID. A subscriber that
// cannot take the event (closed, or its queue is full) is dropped; it gets a
// fresh snapshot when it reconnects.
func (h *Hub) Broadcast(userID string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}

	subscribers := h.subscribers(userID)
	if len(subscribers) == 0 {
		return
	}

	for _, s := range subscribers {
		if err := s.Send(data); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", userID).
				Str("client_id", s.ID()).
				Msg("Dropping WebSocket client")
			h.drop(s)
		}
	}

	log.Debug().
		Str("user_id", userID).
		Str("event_type", event.Type).
		Int("client_count", len(subscribers)).
		Msg("Broadcast event")
}

// subscribers copies a user's subscribers so sends happen without the lock
func (h *Hub) subscribers(userID string) []Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.users[userID]
	result := make([]Subscriber, 0, len(set))
	for _, s := range set {
		result = append(result, s)
	}
	return result
}

func (h *Hub) drop(s Subscriber) {
	if h.Unregister(s) {
		s.Close()
	}
}

// ClientCount returns the number of subscribers for a user
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// TotalClientCount returns the total number of connected subscribers
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, set := range h.users {
		total += len(set)
	}
	return total
}
