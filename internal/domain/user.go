package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Storage keys used in durable local storage
const (
	KeyUserToken     = "userToken"
	KeyCurrentUser   = "currentUser"
	KeyExpenses      = "expenses"
	KeyUsers         = "users"
	KeyMonthlyBudget = "monthlyBudget"
)

// User is an account known to the data service
type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// UnmarshalJSON accepts numeric and string ids
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		Username string          `json:"username"`
		Email    *string         `json:"email"`
		Name     *string         `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.ID = rawToString(raw.ID)
	u.Username = raw.Username
	u.Email = raw.Email
	u.Name = raw.Name
	return nil
}

// Session is the authenticated state of the current user
type Session struct {
	Token     string    `json:"token"`
	User      *User     `json:"user"`
	StartedAt time.Time `json:"startedAt"`
}

// SessionToken derives the placeholder session token for a user
func SessionToken(userID string) string {
	return "token_" + userID
}

type userIDKey struct{}

// WithUserID attaches the acting user's id to ctx
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the id set by WithUserID, or "" if none
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
