package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseStore owns the ordered expense collection of the current session.
// Every mutation reaches the backend before it is committed in memory.
type ExpenseStore struct {
	backend  domain.DataBackend
	clock    Clock
	expenses []*domain.Expense
	mu       sync.RWMutex
}

// NewExpenseStore creates a new ExpenseStore
func NewExpenseStore(backend domain.DataBackend, clock Clock) *ExpenseStore {
	return &ExpenseStore{
		backend:  backend,
		clock:    clock,
		expenses: []*domain.Expense{},
	}
}

// Load replaces the collection with the backend's list
func (s *ExpenseStore) Load(ctx context.Context) error {
	loaded, err := s.backend.ListExpenses(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(loaded))
	expenses := make([]*domain.Expense, 0, len(loaded))
	for _, e := range loaded {
		if e == nil {
			continue
		}
		e = s.normalize(e.Clone(), false)
		if seen[e.ID] {
			log.Warn().Str("expense_id", e.ID).Msg("Skipping duplicate expense id from backend")
			continue
		}
		seen[e.ID] = true
		expenses = append(expenses, e)
	}

	s.mu.Lock()
	s.expenses = expenses
	s.mu.Unlock()
	return nil
}

// Add assigns an id and createdAt to input, persists it and returns the stored record
func (s *ExpenseStore) Add(ctx context.Context, input domain.NewExpense) (*domain.Expense, error) {
	now := s.clock.now()
	expense := s.normalize(&domain.Expense{
		ID:          uuid.New().String(),
		Amount:      input.Amount,
		Description: input.Description,
		Category:    input.Category,
		Date:        input.Date,
		CreatedAt:   now,
	}, true)

	stored, err := s.backend.CreateExpense(ctx, expense.Clone())
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	if stored != nil {
		stored = stored.Clone()
		// The backend may assign its own id; everything else stays ours
		if stored.ID != "" {
			expense.ID = stored.ID
		}
		if !stored.CreatedAt.IsZero() {
			expense.CreatedAt = stored.CreatedAt
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The backend has already committed the record, so it replaces any local copy
	if idx := s.indexOf(expense.ID); idx >= 0 {
		log.Warn().Str("expense_id", expense.ID).Msg("Backend reused an existing expense id, replacing local copy")
		s.expenses[idx] = expense
		return expense.Clone(), nil
	}
	if s.backend.Ordering() == domain.OrderNewestFirst {
		s.expenses = append([]*domain.Expense{expense}, s.expenses...)
	} else {
		s.expenses = append(s.expenses, expense)
	}
	return expense.Clone(), nil
}

// Remove deletes the expense with id. A missing id is a no-op that reports
// false without touching the backend.
func (s *ExpenseStore) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	present := s.indexOf(id) >= 0
	s.mu.RUnlock()
	if !present {
		return false, nil
	}

	if err := s.backend.DeleteExpense(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrExpenseNotFound) {
			return false, fmt.Errorf("delete expense: %w", err)
		}
		// Already gone upstream; drop the stale local copy
		log.Warn().Str("expense_id", id).Msg("Expense missing from backend during delete")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(id); idx >= 0 {
		s.expenses = append(s.expenses[:idx], s.expenses[idx+1:]...)
	}
	return true, nil
}

// List returns a copy of the collection in stable order
func (s *ExpenseStore) List() []*domain.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Expense, len(s.expenses))
	for i, e := range s.expenses {
		result[i] = e.Clone()
	}
	return result
}

// Search filters the collection by description or category
func (s *ExpenseStore) Search(query string) []*domain.Expense {
	return FilterExpenses(s.List(), query)
}

// FindByID returns the expense with id, or false when there is none
func (s *ExpenseStore) FindByID(id string) (*domain.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.expenses[idx].Clone(), true
	}
	return nil, false
}

// Fetch looks id up in memory first and falls back to the backend
func (s *ExpenseStore) Fetch(ctx context.Context, id string) (*domain.Expense, bool, error) {
	if e, ok := s.FindByID(id); ok {
		return e, true, nil
	}

	e, err := s.backend.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if e == nil {
		return nil, false, nil
	}
	return s.normalize(e.Clone(), false), true, nil
}

// Len returns the number of expenses
func (s *ExpenseStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expenses)
}

// Reset empties the collection without touching the backend
func (s *ExpenseStore) Reset() {
	s.mu.Lock()
	s.expenses = []*domain.Expense{}
	s.mu.Unlock()
}

// normalize applies record defaults. Only new records get a date.
func (s *ExpenseStore) normalize(e *domain.Expense, isNew bool) *domain.Expense {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Amount.IsNegative() {
		log.Warn().Str("expense_id", e.ID).Str("amount", e.Amount.String()).Msg("Negative expense amount treated as zero")
		e.Amount = decimal.Zero
	}
	e.Description = strings.TrimSpace(e.Description)
	if strings.TrimSpace(string(e.Category)) == "" {
		e.Category = domain.CategoryUncategorized
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock.now()
	}
	if isNew && e.Date == nil {
		d := e.CreatedAt
		e.Date = &d
	}
	return e
}

func (s *ExpenseStore) indexOf(id string) int {
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
