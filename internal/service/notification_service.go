package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxNotificationHistory caps the browsable history
const MaxNotificationHistory = 100

// NotificationService formats user-facing messages, keeps a history and
// fans each one out to the registered sinks
type NotificationService struct {
	sinks   []domain.NotificationSink
	history []domain.Notification
	clock   Clock
	mu      sync.RWMutex
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(clock Clock, sinks ...domain.NotificationSink) *NotificationService {
	return &NotificationService{
		sinks:   sinks,
		history: []domain.Notification{},
		clock:   clock,
	}
}

// AddSink registers another delivery sink
func (s *NotificationService) AddSink(sink domain.NotificationSink) {
	s.mu.Lock()
	s.sinks = append(s.sinks, sink)
	s.mu.Unlock()
}

// Notify records and delivers a notification
func (s *NotificationService) Notify(ctx context.Context, title, message string, typ domain.NotificationType) domain.Notification {
	n := domain.Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Type:      typ,
		Timestamp: s.clock.now(),
	}

	s.mu.Lock()
	s.history = append([]domain.Notification{n}, s.history...)
	if len(s.history) > MaxNotificationHistory {
		s.history = s.history[:MaxNotificationHistory]
	}
	sinks := make([]domain.NotificationSink, len(s.sinks))
	copy(sinks, s.sinks)
	s.mu.Unlock()

	for _, sink := range sinks {
		sink.Show(ctx, n)
	}
	return n
}

// ExpenseAdded confirms a new expense
func (s *NotificationService) ExpenseAdded(ctx context.Context, amount decimal.Decimal) domain.Notification {
	return s.Notify(ctx, "Expense Added",
		fmt.Sprintf("Successfully added expense of $%s", amount.StringFixed(2)),
		domain.NotificationTypeExpense)
}

// ExpenseDeleted confirms a removed expense
func (s *NotificationService) ExpenseDeleted(ctx context.Context, amount decimal.Decimal) domain.Notification {
	return s.Notify(ctx, "Expense Deleted",
		fmt.Sprintf("Successfully deleted expense of $%s", amount.StringFixed(2)),
		domain.NotificationTypeExpense)
}

// BudgetUpdated confirms a new monthly budget
func (s *NotificationService) BudgetUpdated(ctx context.Context, amount decimal.Decimal) domain.Notification {
	return s.Notify(ctx, "Budget Updated",
		fmt.Sprintf("Your monthly budget has been set to $%s", amount.StringFixed(2)),
		domain.NotificationTypeBudget)
}

// BudgetAlert delivers a threshold alert
func (s *NotificationService) BudgetAlert(ctx context.Context, alert *domain.AlertEvent) domain.Notification {
	return s.Notify(ctx, alert.Title, alert.Message, domain.NotificationTypeBudget)
}

// History returns the notifications, newest first
func (s *NotificationService) History() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Notification, len(s.history))
	copy(result, s.history)
	return result
}

// Clear drops the history
func (s *NotificationService) Clear() {
	s.mu.Lock()
	s.history = []domain.Notification{}
	s.mu.Unlock()
}
