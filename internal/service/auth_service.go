package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AuthService handles the placeholder login flow: a username lookup
// against the data backend, with the session kept in key-value storage
type AuthService struct {
	backend domain.DataBackend
	kv      domain.KeyValueStore
	clock   Clock
}

// NewAuthService creates a new AuthService
func NewAuthService(backend domain.DataBackend, kv domain.KeyValueStore, clock Clock) *AuthService {
	return &AuthService{
		backend: backend,
		kv:      kv,
		clock:   clock,
	}
}

// Login looks the user up by username and stores the session.
// The password is validated for shape only.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	if err := ValidateLogin(username, password); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)

	user, err := s.backend.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Info().Str("username", username).Msg("Login rejected: unknown user")
			return nil, domain.ErrInvalidCredentials
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to look up user")
		return nil, err
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}

	token := domain.SessionToken(user.ID)
	if err := s.kv.Set(ctx, domain.KeyUserToken, token); err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}
	if err := s.kv.Set(ctx, domain.KeyCurrentUser, string(encoded)); err != nil {
		// Don't leave a token without its user behind
		if rmErr := s.kv.Remove(ctx, domain.KeyUserToken); rmErr != nil {
			log.Warn().Err(rmErr).Msg("Failed to remove session token after login failure")
		}
		return nil, fmt.Errorf("store current user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User logged in")
	return &domain.Session{Token: token, User: user, StartedAt: s.clock.now()}, nil
}

// Logout removes the stored session
func (s *AuthService) Logout(ctx context.Context) error {
	var errs []error
	for _, key := range []string{domain.KeyUserToken, domain.KeyCurrentUser} {
		if err := s.kv.Remove(ctx, key); err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("logout: %w", errors.Join(errs...))
	}
	return nil
}

// Restore returns the stored session, or nil when there is none.
// A corrupt stored user clears the session.
func (s *AuthService) Restore(ctx context.Context) (*domain.Session, error) {
	token, err := s.kv.Get(ctx, domain.KeyUserToken)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session token: %w", err)
	}

	raw, err := s.kv.Get(ctx, domain.KeyCurrentUser)
	if errors.Is(err, domain.ErrKeyNotFound) {
		log.Warn().Msg("Session token without user, clearing session")
		return nil, s.Logout(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load current user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		log.Warn().Err(err).Msg("Stored user is invalid, clearing session")
		return nil, s.Logout(ctx)
	}
	if token != domain.SessionToken(user.ID) {
		log.Warn().Str("user_id", user.ID).Msg("Stored token does not match user, clearing session")
		return nil, s.Logout(ctx)
	}

	return &domain.Session{Token: token, User: &user, StartedAt: s.clock.now()}, nil
}
