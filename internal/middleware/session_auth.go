package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionTokenKey is the context key for the bearer token of the request
	SessionTokenKey contextKey = "session_token"
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey contextKey = "user_id"

	sessionTokenPrefix = "token_"
)

// SessionValidator resolves a bearer token to the active session
type SessionValidator interface {
	ValidateToken(token string) (*domain.Session, error)
}

// SessionAuthMiddleware checks the bearer token against the active session
type SessionAuthMiddleware struct {
	validator SessionValidator
}

// NewSessionAuthMiddleware creates a new SessionAuthMiddleware
func NewSessionAuthMiddleware(validator SessionValidator) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{validator: validator}
}

// Authenticate returns an Echo middleware that requires a valid session token.
// Browsers cannot set headers on a WebSocket upgrade, so a "token" query
// parameter is accepted when the header is absent.
func (m *SessionAuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, detail := extractToken(c)
			if token == "" {
				return unauthorizedError(c, detail)
			}

			if !strings.HasPrefix(token, sessionTokenPrefix) {
				return unauthorizedError(c, "Invalid token format")
			}

			session, err := m.validator.ValidateToken(token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNoActiveSession) {
					log.Debug().Msg("Session token rejected")
					return unauthorizedError(c, "Invalid or expired session")
				}
				log.Error().Err(err).Msg("Session validation failed")
				return unauthorizedError(c, "Session validation failed")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, SessionTokenKey, token)
			ctx = context.WithValue(ctx, UserIDKey, session.User.ID)
			ctx = domain.WithUserID(ctx, session.User.ID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func extractToken(c echo.Context) (token, detail string) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if q := c.QueryParam("token"); q != "" {
			return q, ""
		}
		return "", "Missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", "Invalid authorization header format"
	}
	return parts[1], ""
}

// GetUserID extracts the user ID set by Authenticate
func GetUserID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetSessionToken extracts the token set by Authenticate
func GetSessionToken(c echo.Context) string {
	if token, ok := c.Request().Context().Value(SessionTokenKey).(string); ok {
		return token
	}
	return ""
}
