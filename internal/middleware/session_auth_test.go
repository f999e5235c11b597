package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSessionValidator implements SessionValidator for testing
type MockSessionValidator struct {
	session *domain.Session
	err     error
	tokens  []string
}

func (m *MockSessionValidator) ValidateToken(token string) (*domain.Session, error) {
	m.tokens = append(m.tokens, token)
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func demoSession() *domain.Session {
	return &domain.Session{Token: "token_1", User: &domain.User{ID: "1", Username: "demo"}}
}

func runAuth(t *testing.T, v SessionValidator, req *http.Request) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen echo.Context
	called := false
	handler := func(c echo.Context) error {
		called = true
		seen = c
		return c.NoContent(http.StatusOK)
	}

	require.NoError(t, NewSessionAuthMiddleware(v).Authenticate()(handler)(c))
	return rec, seen, called
}

func TestSessionAuth_Success(t *testing.T) {
	v := &MockSessionValidator{session: demoSession()}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil)
	req.Header.Set("Authorization", "Bearer token_1")

	rec, c, called := runAuth(t, v, req)

	require.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", GetUserID(c))
	assert.Equal(t, "token_1", GetSessionToken(c))
	assert.Equal(t, "1", domain.UserIDFromContext(c.Request().Context()))
	assert.Equal(t, []string{"token_1"}, v.tokens)
}

func TestSessionAuth_QueryToken(t *testing.T) {
	v := &MockSessionValidator{session: demoSession()}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws?token=token_1", nil)

	_, _, called := runAuth(t, v, req)

	assert.True(t, called)
}

func TestSessionAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{name: "missing header"},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer "},
		{name: "bad prefix", header: "Bearer fort_abc"},
		{name: "stale token", header: "Bearer token_2", err: domain.ErrUnauthorized},
		{name: "no session", header: "Bearer token_1", err: domain.ErrNoActiveSession},
		{name: "other failure", header: "Bearer token_1", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &MockSessionValidator{session: demoSession(), err: tt.err}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec, _, called := runAuth(t, v, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), errorTypeUnauthorized)
		})
	}
}

func TestGetUserID_Unauthenticated(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Empty(t, GetUserID(c))
	assert.Empty(t, GetSessionToken(c))
}
