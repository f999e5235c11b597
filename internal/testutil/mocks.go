package testutil

import (
	"context"
	"sync"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
)

// MockDataBackend is a mock implementation of domain.DataBackend
type MockDataBackend struct {
	Expenses []*domain.Expense
	Users    map[string]*domain.User
	Order    domain.Ordering

	// Call counters
	ListCalls   int
	GetCalls    int
	CreateCalls int
	DeleteCalls int

	ListExpensesFn       func(ctx context.Context) ([]*domain.Expense, error)
	GetExpenseFn         func(ctx context.Context, id string) (*domain.Expense, error)
	CreateExpenseFn      func(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	DeleteExpenseFn      func(ctx context.Context, id string) error
	FindUserByUsernameFn func(ctx context.Context, username string) (*domain.User, error)

	mu sync.Mutex
}

// NewMockDataBackend creates a new MockDataBackend with insertion ordering
func NewMockDataBackend() *MockDataBackend {
	return &MockDataBackend{
		Expenses: []*domain.Expense{},
		Users:    make(map[string]*domain.User),
		Order:    domain.OrderInsertion,
	}
}

// AddExpense adds an expense to the mock (for test setup)
func (m *MockDataBackend) AddExpense(e *domain.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Expenses = append(m.Expenses, e)
}

// AddUser adds a user to the mock (for test setup)
func (m *MockDataBackend) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.Username] = user
}

// ListExpenses returns all expenses
func (m *MockDataBackend) ListExpenses(ctx context.Context) ([]*domain.Expense, error) {
	m.mu.Lock()
	m.ListCalls++
	m.mu.Unlock()

	if m.ListExpensesFn != nil {
		return m.ListExpensesFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Expense, len(m.Expenses))
	for i, e := range m.Expenses {
		result[i] = e.Clone()
	}
	return result, nil
}

// GetExpense retrieves an expense by ID
func (m *MockDataBackend) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	m.mu.Lock()
	m.GetCalls++
	m.mu.Unlock()

	if m.GetExpenseFn != nil {
		return m.GetExpenseFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Expenses {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return nil, domain.ErrExpenseNotFound
}

// CreateExpense stores an expense
func (m *MockDataBackend) CreateExpense(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()

	if m.CreateExpenseFn != nil {
		return m.CreateExpenseFn(ctx, e)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Expenses = append(m.Expenses, e.Clone())
	return e.Clone(), nil
}

// DeleteExpense removes an expense
func (m *MockDataBackend) DeleteExpense(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeleteCalls++
	m.mu.Unlock()

	if m.DeleteExpenseFn != nil {
		return m.DeleteExpenseFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.Expenses {
		if e.ID == id {
			m.Expenses = append(m.Expenses[:i], m.Expenses[i+1:]...)
			return nil
		}
	}
	return domain.ErrExpenseNotFound
}

// FindUserByUsername looks a user up by username
func (m *MockDataBackend) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindUserByUsernameFn != nil {
		return m.FindUserByUsernameFn(ctx, username)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[username]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Ordering returns the configured ordering
func (m *MockDataBackend) Ordering() domain.Ordering {
	return m.Order
}

// MockKeyValueStore is a mock implementation of domain.KeyValueStore
type MockKeyValueStore struct {
	Values map[string]string

	GetFn    func(ctx context.Context, key string) (string, error)
	SetFn    func(ctx context.Context, key, value string) error
	RemoveFn func(ctx context.Context, key string) error

	mu sync.RWMutex
}

// NewMockKeyValueStore creates a new MockKeyValueStore
func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{
		Values: make(map[string]string),
	}
}

// Get retrieves a value
func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.Values[key]; ok {
		return v, nil
	}
	return "", domain.ErrKeyNotFound
}

// Set stores a value
func (m *MockKeyValueStore) Set(ctx context.Context, key, value string) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Values[key] = value
	return nil
}

// Remove deletes a value
func (m *MockKeyValueStore) Remove(ctx context.Context, key string) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Values, key)
	return nil
}

// Value returns a stored value directly (for assertions)
func (m *MockKeyValueStore) Value(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.Values[key]
	return v, ok
}

// MockSink records notifications
type MockSink struct {
	Shown []domain.Notification
	mu    sync.Mutex
}

// NewMockSink creates a new MockSink
func NewMockSink() *MockSink {
	return &MockSink{Shown: []domain.Notification{}}
}

// Show records the notification
func (m *MockSink) Show(ctx context.Context, n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Shown = append(m.Shown, n)
}

// Titles returns the titles of shown notifications in order
func (m *MockSink) Titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	titles := make([]string, len(m.Shown))
	for i, n := range m.Shown {
		titles[i] = n.Title
	}
	return titles
}

// PublishedEvent is one event captured by MockEventPublisher
type PublishedEvent struct {
	UserID string
	Event  websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	Events []PublishedEvent
	mu     sync.Mutex
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{Events: []PublishedEvent{}}
}

// Publish records the event
func (m *MockEventPublisher) Publish(userID string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{UserID: userID, Event: event})
}

// Types returns the published event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
