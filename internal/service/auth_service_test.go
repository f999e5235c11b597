package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*AuthService, *testutil.MockDataBackend, *testutil.MockKeyValueStore) {
	backend := testutil.NewMockDataBackend()
	backend.AddUser(&domain.User{ID: "7", Username: "alice"})
	kv := testutil.NewMockKeyValueStore()
	return NewAuthService(backend, kv, fixedClock), backend, kv
}

func TestAuthService_Login(t *testing.T) {
	svc, _, kv := newAuthFixture()

	session, err := svc.Login(context.Background(), " alice ", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "token_7", session.Token)
	assert.Equal(t, "alice", session.User.Username)
	assert.Equal(t, "token_7", kv.Values[domain.KeyUserToken])
	assert.JSONEq(t, `{"id":"7","username":"alice"}`, kv.Values[domain.KeyCurrentUser])
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _, kv := newAuthFixture()

	_, err := svc.Login(context.Background(), "mallory", "secret1")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Empty(t, kv.Values)
}

func TestAuthService_Login_InvalidForm(t *testing.T) {
	svc, backend, _ := newAuthFixture()
	called := false
	backend.FindUserByUsernameFn = func(ctx context.Context, username string) (*domain.User, error) {
		called = true
		return nil, domain.ErrUserNotFound
	}

	_, err := svc.Login(context.Background(), "al", "123")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, called)
}

func TestAuthService_Login_TransportError(t *testing.T) {
	svc, backend, _ := newAuthFixture()
	backend.FindUserByUsernameFn = func(ctx context.Context, username string) (*domain.User, error) {
		return nil, &domain.TransportError{Status: 429, Message: domain.MsgRateLimited}
	}

	_, err := svc.Login(context.Background(), "alice", "secret1")

	var terr *domain.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, domain.MsgRateLimited, terr.Message)
}

func TestAuthService_Login_StorageFailureLeavesNoToken(t *testing.T) {
	svc, _, kv := newAuthFixture()
	kv.SetFn = func(ctx context.Context, key, value string) error {
		if key == domain.KeyCurrentUser {
			return errors.New("full")
		}
		kv.Values[key] = value
		return nil
	}

	_, err := svc.Login(context.Background(), "alice", "secret1")

	require.Error(t, err)
	_, ok := kv.Value(domain.KeyUserToken)
	assert.False(t, ok)
}

func TestAuthService_LogoutAndRestore(t *testing.T) {
	svc, _, kv := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	restored, err := svc.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "7", restored.User.ID)

	require.NoError(t, svc.Logout(ctx))
	assert.Empty(t, kv.Values)

	restored, err = svc.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

func TestAuthService_Restore_CorruptUserClearsSession(t *testing.T) {
	svc, _, kv := newAuthFixture()
	kv.Values[domain.KeyUserToken] = "token_7"
	kv.Values[domain.KeyCurrentUser] = "{not json"

	session, err := svc.Restore(context.Background())

	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Empty(t, kv.Values)
}

func TestAuthService_Restore_MismatchedToken(t *testing.T) {
	svc, _, kv := newAuthFixture()
	kv.Values[domain.KeyUserToken] = "token_9"
	kv.Values[domain.KeyCurrentUser] = `{"id":"7","username":"alice"}`

	session, err := svc.Restore(context.Background())

	require.NoError(t, err)
	assert.Nil(t, session)
}
