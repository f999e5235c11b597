package domain

import "context"

// Ordering is how a backend orders newly added expenses
type Ordering string

const (
	OrderInsertion   Ordering = "insertion"
	OrderNewestFirst Ordering = "newest_first"
)

// DataBackend is the source of truth for expenses and users.
// The local variant keeps everything in key-value storage; the remote
// variant talks to a REST service.
type DataBackend interface {
	ListExpenses(ctx context.Context) ([]*Expense, error)
	GetExpense(ctx context.Context, id string) (*Expense, error)
	// CreateExpense persists e and returns the stored record. Remote
	// services may assign their own id and createdAt.
	CreateExpense(ctx context.Context, e *Expense) (*Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	Ordering() Ordering
}

// KeyValueStore is durable string storage. Get returns ErrKeyNotFound
// for missing keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
