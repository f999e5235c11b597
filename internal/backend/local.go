package backend

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Local is a DataBackend kept entirely in key-value storage.
// Expenses are stored as one JSON array in insertion order.
type Local struct {
	kv domain.KeyValueStore
	mu sync.Mutex
}

// NewLocal creates a new local backend
func NewLocal(kv domain.KeyValueStore) *Local {
	return &Local{kv: kv}
}

// Ordering implements domain.DataBackend
func (l *Local) Ordering() domain.Ordering {
	return domain.OrderInsertion
}

// ListExpenses implements domain.DataBackend
func (l *Local) ListExpenses(ctx context.Context) ([]*domain.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readExpenses(ctx)
}

// GetExpense implements domain.DataBackend
func (l *Local) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expenses, err := l.readExpenses(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrExpenseNotFound
}

// CreateExpense implements domain.DataBackend
func (l *Local) CreateExpense(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expenses, err := l.readExpenses(ctx)
	if err != nil {
		return nil, err
	}

	stored := e.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	for _, existing := range expenses {
		if existing.ID == stored.ID {
			return nil, domain.ErrInvalidInput
		}
	}

	if err := l.writeExpenses(ctx, append(expenses, stored)); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

// DeleteExpense implements domain.DataBackend
func (l *Local) DeleteExpense(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	expenses, err := l.readExpenses(ctx)
	if err != nil {
		return err
	}
	for i, e := range expenses {
		if e.ID == id {
			return l.writeExpenses(ctx, append(expenses[:i], expenses[i+1:]...))
		}
	}
	return domain.ErrExpenseNotFound
}

// FindUserByUsername implements domain.DataBackend. Usernames match case-insensitively.
func (l *Local) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	users, err := l.readUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Seed stores the demo user and sample expenses when nothing is stored yet
func (l *Local) Seed(ctx context.Context, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.kv.Get(ctx, domain.KeyUsers); errors.Is(err, domain.ErrKeyNotFound) {
		if err := l.writeJSON(ctx, domain.KeyUsers, sampleUsers()); err != nil {
			return err
		}
		log.Info().Msg("Seeded demo users")
	} else if err != nil {
		return err
	}

	if _, err := l.kv.Get(ctx, domain.KeyExpenses); errors.Is(err, domain.ErrKeyNotFound) {
		samples := sampleExpenses(now)
		if err := l.writeExpenses(ctx, samples); err != nil {
			return err
		}
		log.Info().Int("count", len(samples)).Msg("Seeded sample expenses")
	} else if err != nil {
		return err
	}
	return nil
}

// AddUser registers a user in the local directory
func (l *Local) AddUser(ctx context.Context, user *domain.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	users, err := l.readUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, user.Username) {
			return domain.NewValidationError("username", "Username already exists")
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return l.writeJSON(ctx, domain.KeyUsers, append(users, user))
}

func (l *Local) readExpenses(ctx context.Context) ([]*domain.Expense, error) {
	raw, err := l.kv.Get(ctx, domain.KeyExpenses)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return []*domain.Expense{}, nil
	}
	if err != nil {
		return nil, err
	}

	var expenses []*domain.Expense
	if err := json.Unmarshal([]byte(raw), &expenses); err != nil {
		return nil, &domain.PersistenceError{Op: "decode", Key: domain.KeyExpenses, Err: err}
	}

	result := make([]*domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e != nil {
			result = append(result, e)
		}
	}
	return result, nil
}

func (l *Local) writeExpenses(ctx context.Context, expenses []*domain.Expense) error {
	return l.writeJSON(ctx, domain.KeyExpenses, expenses)
}

func (l *Local) readUsers(ctx context.Context) ([]*domain.User, error) {
	raw, err := l.kv.Get(ctx, domain.KeyUsers)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return []*domain.User{}, nil
	}
	if err != nil {
		return nil, err
	}

	var users []*domain.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, &domain.PersistenceError{Op: "decode", Key: domain.KeyUsers, Err: err}
	}
	return users, nil
}

func (l *Local) writeJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Key: key, Err: err}
	}
	return l.kv.Set(ctx, key, string(data))
}

func sampleUsers() []*domain.User {
	email := "demo@spendwise.local"
	name := "Demo User"
	return []*domain.User{
		{ID: "1", Username: "demo", Email: &email, Name: &name},
	}
}

func sampleExpenses(now time.Time) []*domain.Expense {
	samples := []struct {
		amount      string
		description string
		category    domain.Category
		daysAgo     int
	}{
		{"45.50", "Weekly groceries", domain.CategoryFood, 0},
		{"12.00", "Bus pass top-up", domain.CategoryTransportation, 1},
		{"15.99", "Streaming subscription", domain.CategoryEntertainment, 2},
		{"80.25", "Electricity bill", domain.CategoryUtilities, 4},
		{"34.90", "Running shoes", domain.CategoryShopping, 6},
		{"20.00", "Pharmacy", domain.CategoryHealthcare, 9},
	}

	expenses := make([]*domain.Expense, 0, len(samples))
	for _, s := range samples {
		date := now.AddDate(0, 0, -s.daysAgo)
		expenses = append(expenses, &domain.Expense{
			ID:          uuid.New().String(),
			Amount:      decimal.RequireFromString(s.amount),
			Description: s.description,
			Category:    s.category,
			Date:        &date,
			CreatedAt:   date,
		})
	}
	return expenses
}
