package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// SubscriberDisconnector drops a user's live subscribers
type SubscriberDisconnector interface {
	DisconnectUser(userID string)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	tracker     *service.Tracker
	subscribers SubscriberDisconnector
}

// NewAuthHandler creates a new AuthHandler. subscribers may be nil.
func NewAuthHandler(tracker *service.Tracker, subscribers SubscriberDisconnector) *AuthHandler {
	return &AuthHandler{tracker: tracker, subscribers: subscribers}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// SessionResponse represents the active session
type SessionResponse struct {
	Token     string       `json:"token"`
	User      UserResponse `json:"user"`
	StartedAt string       `json:"startedAt"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	session, err := h.tracker.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return handleServiceError(c, err, "log in")
	}

	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if err := h.tracker.Logout(c.Request().Context()); err != nil {
		return handleServiceError(c, err, "log out")
	}
	if h.subscribers != nil && userID != "" {
		h.subscribers.DisconnectUser(userID)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	session := h.tracker.Session()
	if session == nil {
		return NewUnauthorizedError(c, "Please log in to continue")
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

func toSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		Token: s.Token,
		User: UserResponse{
			ID:       s.User.ID,
			Username: s.User.Username,
			Email:    s.User.Email,
			Name:     s.User.Name,
		},
		StartedAt: s.StartedAt.Format(time.RFC3339),
	}
}
