package service

import (
	"context"
	"sync"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TrackerDeps holds the collaborators of a Tracker
type TrackerDeps struct {
	Backend          domain.DataBackend
	Storage          domain.KeyValueStore
	Notifier         *NotificationService
	DefaultBudget    decimal.Decimal
	StrictCategories bool
	AlertDedupe      bool
	Clock            Clock
}

// Tracker is the single owner of the session state. Every command runs
// under one lock: validate, mutate, recompute, then broadcast a snapshot.
type Tracker struct {
	auth      *AuthService
	store     *ExpenseStore
	budget    *BudgetService
	notifier  *NotificationService
	guard     *AlertGuard
	validator *ExpenseValidator
	clock     Clock

	session        *domain.Session
	version        int64
	eventPublisher websocket.EventPublisher
	mu             sync.Mutex
}

// NewTracker creates a new Tracker
func NewTracker(deps TrackerDeps) *Tracker {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewNotificationService(deps.Clock)
	}

	return &Tracker{
		auth:      NewAuthService(deps.Backend, deps.Storage, deps.Clock),
		store:     NewExpenseStore(deps.Backend, deps.Clock),
		budget:    NewBudgetService(deps.Storage, deps.DefaultBudget),
		notifier:  notifier,
		guard:     NewAlertGuard(deps.AlertDedupe),
		validator: NewExpenseValidator(deps.StrictCategories, deps.Clock),
		clock:     deps.Clock,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (t *Tracker) SetEventPublisher(publisher websocket.EventPublisher) {
	t.mu.Lock()
	t.eventPublisher = publisher
	t.mu.Unlock()
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (t *Tracker) publishEvent(event websocket.Event) {
	if t.eventPublisher != nil && t.session != nil {
		t.eventPublisher.Publish(t.session.User.ID, event)
	}
}

// actingCtx tags ctx with the session user for notification sinks.
// Callers hold t.mu.
func (t *Tracker) actingCtx(ctx context.Context) context.Context {
	if t.session == nil || t.session.User == nil {
		return ctx
	}
	return domain.WithUserID(ctx, t.session.User.ID)
}

// Start loads the budget and restores a stored session, if any.
// Failing to load expenses for a restored session is logged, not fatal.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.budget.Load(ctx); err != nil {
		return err
	}

	session, err := t.auth.Restore(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	t.session = session
	log.Info().Str("user_id", session.User.ID).Msg("Restored session")

	if err := t.store.Load(ctx); err != nil {
		log.Warn().Err(err).Str("user_id", session.User.ID).Msg("Failed to load expenses for restored session")
	}
	return nil
}

// Login authenticates the user and loads their expenses
func (t *Tracker) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, err := t.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	t.session = session
	t.guard.Reset()

	if !t.budget.Loaded() {
		if err := t.budget.Load(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to load budget at login")
		}
	}
	if err := t.store.Load(ctx); err != nil {
		log.Warn().Err(err).Str("user_id", session.User.ID).Msg("Failed to load expenses at login")
	}

	t.afterMutation(ctx)
	return session, nil
}

// Logout ends the session and clears session state
func (t *Tracker) Logout(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.auth.Logout(ctx); err != nil {
		return err
	}
	if t.session != nil {
		log.Info().Str("user_id", t.session.User.ID).Msg("User logged out")
	}
	t.session = nil
	t.store.Reset()
	t.guard.Reset()
	t.notifier.Clear()
	return nil
}

// Session returns the active session or nil
func (t *Tracker) Session() *domain.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// ValidateToken returns the active session when token belongs to it
func (t *Tracker) ValidateToken(token string) (*domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil || token == "" || token != t.session.Token {
		return nil, domain.ErrUnauthorized
	}
	return t.session, nil
}

// AddExpense validates and stores a new expense
func (t *Tracker) AddExpense(ctx context.Context, input ExpenseInput) (*domain.Expense, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, domain.ErrNoActiveSession
	}

	newExpense, err := t.validator.Validate(input)
	if err != nil {
		return nil, err
	}

	expense, err := t.store.Add(ctx, *newExpense)
	if err != nil {
		log.Error().Err(err).Str("user_id", t.session.User.ID).Msg("Failed to add expense")
		return nil, err
	}

	log.Info().
		Str("expense_id", expense.ID).
		Str("amount", expense.Amount.String()).
		Str("category", string(expense.Category)).
		Msg("Expense added")

	t.notifier.ExpenseAdded(t.actingCtx(ctx), expense.Amount)
	t.publishEvent(websocket.ExpenseCreated(expense))
	t.afterMutation(ctx)
	return expense, nil
}

// DeleteExpense removes an expense; false means there was nothing to delete
func (t *Tracker) DeleteExpense(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return false, domain.ErrNoActiveSession
	}

	expense, found := t.store.FindByID(id)
	if !found {
		return false, nil
	}

	removed, err := t.store.Remove(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("expense_id", id).Msg("Failed to delete expense")
		return false, err
	}
	if !removed {
		return false, nil
	}

	log.Info().Str("expense_id", id).Str("amount", expense.Amount.String()).Msg("Expense deleted")

	t.notifier.ExpenseDeleted(t.actingCtx(ctx), expense.Amount)
	t.publishEvent(websocket.ExpenseDeleted(map[string]string{"id": id}))
	t.afterMutation(ctx)
	return true, nil
}

// ListExpenses returns the expenses matching query in list order
func (t *Tracker) ListExpenses(query string) ([]*domain.Expense, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, domain.ErrNoActiveSession
	}
	return t.store.Search(query), nil
}

// GetExpense returns one expense, asking the backend when it is not cached
func (t *Tracker) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, domain.ErrNoActiveSession
	}

	expense, found, err := t.store.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrExpenseNotFound
	}
	return expense, nil
}

// Refresh reloads the expenses from the backend
func (t *Tracker) Refresh(ctx context.Context) ([]*domain.Expense, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, domain.ErrNoActiveSession
	}

	if err := t.store.Load(ctx); err != nil {
		log.Error().Err(err).Str("user_id", t.session.User.ID).Msg("Failed to refresh expenses")
		return nil, err
	}

	expenses := t.store.List()
	t.publishEvent(websocket.ExpensesSynced(map[string]int{"count": len(expenses)}))
	t.afterMutation(ctx)
	return expenses, nil
}

// SetBudget replaces the monthly budget
func (t *Tracker) SetBudget(ctx context.Context, amount decimal.Decimal) (*domain.BudgetOverview, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, domain.ErrNoActiveSession
	}

	if err := t.budget.SetBudget(ctx, amount); err != nil {
		return nil, err
	}

	log.Info().Str("amount", amount.String()).Msg("Monthly budget updated")

	t.notifier.BudgetUpdated(t.actingCtx(ctx), amount)
	t.publishEvent(websocket.BudgetUpdated(map[string]decimal.Decimal{"monthlyBudget": amount}))
	t.afterMutation(ctx)
	return t.overview(), nil
}

// BudgetOverview returns the budget, its aggregates and the current alert
func (t *Tracker) BudgetOverview() (*domain.BudgetOverview, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, domain.ErrNoActiveSession
	}
	return t.overview(), nil
}

// Dashboard returns the dashboard statistics
func (t *Tracker) Dashboard() (*domain.DashboardStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, domain.ErrNoActiveSession
	}
	return ComputeDashboardStats(t.store.List(), t.clock.now()), nil
}

// Notifications returns the notification history, newest first
func (t *Tracker) Notifications() ([]domain.Notification, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, domain.ErrNoActiveSession
	}
	return t.notifier.History(), nil
}

// Snapshot returns the current state without advancing the version
func (t *Tracker) Snapshot() (*domain.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, domain.ErrNoActiveSession
	}
	return t.snapshot(), nil
}

// afterMutation evaluates the alert policy and broadcasts the new snapshot.
// Callers hold t.mu.
func (t *Tracker) afterMutation(ctx context.Context) {
	t.version++
	snapshot := t.snapshot()

	if t.guard.Allow(snapshot.Alert) {
		log.Info().
			Str("level", string(snapshot.Alert.Level)).
			Str("percentage", snapshot.Alert.Percentage.String()).
			Msg("Budget alert")
		t.notifier.BudgetAlert(t.actingCtx(ctx), snapshot.Alert)
	}

	t.publishEvent(websocket.SnapshotUpdated(snapshot))
}

func (t *Tracker) overview() *domain.BudgetOverview {
	asOf := t.clock.now()
	budget := t.budget.MonthlyBudget()
	summary := ComputeSummary(t.store.List(), budget, asOf)
	return &domain.BudgetOverview{
		MonthlyBudget: budget,
		Summary:       summary,
		Alert:         EvaluateAlert(summary.SpendingPercentage),
		AsOf:          asOf,
	}
}

func (t *Tracker) snapshot() *domain.Snapshot {
	asOf := t.clock.now()
	expenses := t.store.List()
	budget := t.budget.MonthlyBudget()
	summary := ComputeSummary(expenses, budget, asOf)
	return &domain.Snapshot{
		Version:       t.version,
		Expenses:      expenses,
		MonthlyBudget: budget,
		Summary:       summary,
		Alert:         EvaluateAlert(summary.SpendingPercentage),
		AsOf:          asOf,
	}
}

