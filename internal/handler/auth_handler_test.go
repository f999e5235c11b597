package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.tracker, nil)

	c, rec := env.newContext(http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "demo", Password: "password"}, false)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "token_1", resp.Token)
	assert.Equal(t, "demo", resp.User.Username)

	token, ok := env.kv.Value(domain.KeyUserToken)
	require.True(t, ok)
	assert.Equal(t, "token_1", token)
}

func TestLogin_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.tracker, nil)

	c, rec := env.newContext(http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "ghost", Password: "password"}, false)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeProblem(t, rec).Detail)
}

func TestLogin_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.tracker, nil)

	c, rec := env.newContext(http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "de", Password: "123"}, false)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, ErrorTypeValidation, p.Type)
	assert.Equal(t, []ValidationError{
		{Field: "password", Message: "Password must be at least 6 characters long"},
		{Field: "username", Message: "Username must be at least 3 characters long"},
	}, p.Errors)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.tracker, nil)

	c, rec := env.newContext(http.MethodGet, "/api/v1/auth/me", nil, true)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.login(t)
	c, rec = env.newContext(http.MethodGet, "/api/v1/auth/me", nil, true)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type recordingDisconnector struct {
	users []string
}

func (r *recordingDisconnector) DisconnectUser(userID string) {
	r.users = append(r.users, userID)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	subscribers := &recordingDisconnector{}
	h := NewAuthHandler(env.tracker, subscribers)

	c, rec := env.newContext(http.MethodPost, "/api/v1/auth/logout", nil, true)
	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, env.tracker.Session())
	assert.Equal(t, []string{"1"}, subscribers.users)
	_, ok := env.kv.Value(domain.KeyUserToken)
	assert.False(t, ok)
}
