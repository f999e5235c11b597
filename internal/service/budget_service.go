package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService owns the monthly budget figure
type BudgetService struct {
	kv            domain.KeyValueStore
	defaultBudget decimal.Decimal
	monthlyBudget decimal.Decimal
	loaded        bool
	mu            sync.RWMutex
}

// NewBudgetService creates a new BudgetService. defaultBudget is stored
// the first time Load finds nothing.
func NewBudgetService(kv domain.KeyValueStore, defaultBudget decimal.Decimal) *BudgetService {
	if defaultBudget.IsNegative() {
		defaultBudget = domain.DefaultMonthlyBudget
	}
	return &BudgetService{
		kv:            kv,
		defaultBudget: defaultBudget,
		monthlyBudget: defaultBudget,
	}
}

// Load reads the stored budget, creating it with the default when absent
func (s *BudgetService) Load(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, domain.KeyMonthlyBudget)
	if errors.Is(err, domain.ErrKeyNotFound) {
		if err := s.kv.Set(ctx, domain.KeyMonthlyBudget, s.defaultBudget.String()); err != nil {
			return fmt.Errorf("store default budget: %w", err)
		}
		s.commit(s.defaultBudget)
		log.Info().Str("amount", s.defaultBudget.String()).Msg("Initialized monthly budget")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load budget: %w", err)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsNegative() {
		log.Warn().Str("value", raw).Msg("Stored budget is invalid, using default")
		amount = s.defaultBudget
	}
	s.commit(amount)
	return nil
}

// SetBudget persists amount and then commits it
func (s *BudgetService) SetBudget(ctx context.Context, amount decimal.Decimal) error {
	if err := ValidateBudget(amount); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, domain.KeyMonthlyBudget, amount.String()); err != nil {
		return fmt.Errorf("store budget: %w", err)
	}
	s.commit(amount)
	return nil
}

// MonthlyBudget returns the committed budget
func (s *BudgetService) MonthlyBudget() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monthlyBudget
}

// Loaded reports whether Load or SetBudget has succeeded
func (s *BudgetService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *BudgetService) commit(amount decimal.Decimal) {
	s.mu.Lock()
	s.monthlyBudget = amount
	s.loaded = true
	s.mu.Unlock()
}
