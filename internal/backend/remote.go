package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultRemoteTimeout bounds every request to the data service
const DefaultRemoteTimeout = 15 * time.Second

// Per-operation failure messages shown to the user
const (
	msgFetchExpenses = "Failed to fetch expenses. Please try again."
	msgFetchExpense  = "Failed to fetch expense details. Please try again."
	msgCreateExpense = "Failed to create expense. Please try again."
	msgDeleteExpense = "Failed to delete expense. Please try again."
	msgLogin         = "An error occurred during login. Please try again."
)

// maxResponseSize caps how much of a response body is read
const maxResponseSize = 10 << 20

// Remote is a DataBackend backed by the REST data service
type Remote struct {
	baseURL string
	client  *http.Client
	kv      domain.KeyValueStore
}

// NewRemote creates a new remote backend. The session token, if stored
// in kv, is sent as a bearer token on every request.
func NewRemote(baseURL string, timeout time.Duration, kv domain.KeyValueStore) *Remote {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		kv:      kv,
	}
}

// Ordering implements domain.DataBackend
func (r *Remote) Ordering() domain.Ordering {
	return domain.OrderNewestFirst
}

// ListExpenses implements domain.DataBackend
func (r *Remote) ListExpenses(ctx context.Context) ([]*domain.Expense, error) {
	var expenses []*domain.Expense
	if err := r.do(ctx, http.MethodGet, "/expenses", nil, &expenses, msgFetchExpenses); err != nil {
		return nil, err
	}

	result := make([]*domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e != nil {
			result = append(result, e)
		}
	}
	return result, nil
}

// GetExpense implements domain.DataBackend
func (r *Remote) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	var expense domain.Expense
	if err := r.do(ctx, http.MethodGet, "/expenses/"+url.PathEscape(id), nil, &expense, msgFetchExpense); err != nil {
		return nil, notFoundAs(err, domain.ErrExpenseNotFound)
	}
	return &expense, nil
}

// createExpenseRequest is the wire form of a new expense.
// The service assigns id and createdAt.
type createExpenseRequest struct {
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Date        string      `json:"date,omitempty"`
}

// CreateExpense implements domain.DataBackend
func (r *Remote) CreateExpense(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	body := createExpenseRequest{
		Amount:      json.Number(e.Amount.String()),
		Description: e.Description,
		Category:    string(e.Category),
	}
	if e.Date != nil {
		body.Date = e.Date.UTC().Format(time.RFC3339)
	}

	var stored domain.Expense
	if err := r.do(ctx, http.MethodPost, "/expenses", body, &stored, msgCreateExpense); err != nil {
		return nil, err
	}
	return &stored, nil
}

// DeleteExpense implements domain.DataBackend
func (r *Remote) DeleteExpense(ctx context.Context, id string) error {
	err := r.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil, msgDeleteExpense)
	return notFoundAs(err, domain.ErrExpenseNotFound)
}

// FindUserByUsername implements domain.DataBackend. The first match wins.
func (r *Remote) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var users []*domain.User
	path := "/users?username=" + url.QueryEscape(username)
	if err := r.do(ctx, http.MethodGet, path, nil, &users, msgLogin); err != nil {
		return nil, err
	}
	for _, u := range users {
		if u != nil {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// do performs one request. Failures come back as *domain.TransportError
// carrying a display-ready message.
func (r *Remote) do(ctx context.Context, method, path string, body, out interface{}, failMsg string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &domain.TransportError{Message: failMsg, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return &domain.TransportError{Message: failMsg, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := r.sessionToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("path", path).Msg("Data service request failed")
		return &domain.TransportError{Message: failMsg, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &domain.TransportError{Status: resp.StatusCode, Message: failMsg, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &domain.TransportError{Status: resp.StatusCode, Message: domain.MsgRateLimited}
	case resp.StatusCode == http.StatusNotFound:
		return &domain.TransportError{Status: resp.StatusCode, Message: domain.MsgNotFound}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		log.Error().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("path", path).
			Str("body", truncate(string(data), 200)).
			Msg("Data service error")
		return &domain.TransportError{
			Status:  resp.StatusCode,
			Message: failMsg,
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.TransportError{Status: resp.StatusCode, Message: failMsg, Err: err}
	}
	return nil
}

func (r *Remote) sessionToken(ctx context.Context) string {
	if r.kv == nil {
		return ""
	}
	token, err := r.kv.Get(ctx, domain.KeyUserToken)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			log.Warn().Err(err).Msg("Failed to read session token")
		}
		return ""
	}
	return token
}

// notFoundAs attaches sentinel to a 404 TransportError so callers can
// match it with errors.Is
func notFoundAs(err error, sentinel error) error {
	var terr *domain.TransportError
	if errors.As(err, &terr) && terr.Status == http.StatusNotFound && terr.Err == nil {
		terr.Err = sentinel
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
