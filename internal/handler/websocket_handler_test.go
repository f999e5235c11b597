package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSnapshots struct {
	snapshot *domain.Snapshot
	err      error
}

func (s *stubSnapshots) Snapshot() (*domain.Snapshot, error) {
	return s.snapshot, s.err
}

var testAllowedOrigins = []string{"http://localhost:3000", "https://spendwise.app"}

func TestWebSocketHandler_HandleWS_NoSession(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), &stubSnapshots{}, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleWS(c)

	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_NoUpgrade(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, &stubSnapshots{}, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, "1"))
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleWS(c)

	// gorilla/websocket rejects a request without upgrade headers
	assert.Error(t, err)
	assert.Zero(t, hub.ClientCount("1"))
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &stubSnapshots{}, testAllowedOrigins)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"allowed origin https", "https://spendwise.app", true},
		{"disallowed origin", "https://evil.com", false},
		{"empty origin (same-origin)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, h.checkOrigin(req))
		})
	}
}

func TestWebSocketHandler_SnapshotEvent(t *testing.T) {
	snapshot := &domain.Snapshot{Version: 7, MonthlyBudget: dec("1000")}
	h := NewWebSocketHandler(websocket.NewHub(), &stubSnapshots{snapshot: snapshot}, nil)

	event, err := h.snapshotEvent()
	require.NoError(t, err)

	data, err := event.ToJSON()
	require.NoError(t, err)
	var decoded struct {
		Type    string          `json:"type"`
		Payload domain.Snapshot `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "snapshot.updated", decoded.Type)
	assert.Equal(t, int64(7), decoded.Payload.Version)
}

func TestWebSocketHandler_SnapshotEventWithoutSession(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &stubSnapshots{err: domain.ErrNoActiveSession}, nil)

	_, err := h.snapshotEvent()

	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
}
