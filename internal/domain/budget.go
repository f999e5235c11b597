package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMonthlyBudget is used when no budget has been stored yet
var DefaultMonthlyBudget = decimal.NewFromInt(1000)

// Alert thresholds, in percent of the monthly budget
var (
	WarningThreshold  = decimal.NewFromInt(90)
	ExceededThreshold = decimal.NewFromInt(100)
)

// BudgetSummary holds the figures derived from expenses and the monthly budget
type BudgetSummary struct {
	TotalSpent         decimal.Decimal `json:"totalSpent"`
	RemainingBudget    decimal.Decimal `json:"remainingBudget"`
	SpendingPercentage decimal.Decimal `json:"spendingPercentage"`
}

// AlertLevel classifies spending against the budget
type AlertLevel string

const (
	AlertLevelNone     AlertLevel = ""
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelExceeded AlertLevel = "exceeded"
)

// AlertEvent is a threshold alert produced by the alert policy
type AlertEvent struct {
	Level      AlertLevel      `json:"level"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Percentage decimal.Decimal `json:"percentage"`
}

// CategoryAmount represents spending amount for a category
type CategoryAmount struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// DailyAmount represents spending on a single calendar day
type DailyAmount struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// DashboardStats contains the dashboard metrics
type DashboardStats struct {
	AllTimeTotal     decimal.Decimal  `json:"allTimeTotal"`
	MonthlyTotal     decimal.Decimal  `json:"monthlyTotal"`
	TransactionCount int              `json:"transactionCount"`
	RecentExpenses   []*Expense       `json:"recentExpenses"`
	ByCategory       []CategoryAmount `json:"byCategory"`
	DailySpending    []DailyAmount    `json:"dailySpending"`
}

// Snapshot is an immutable view of the session state emitted after every mutation
type Snapshot struct {
	Version       int64           `json:"version"`
	Expenses      []*Expense      `json:"expenses"`
	MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
	Summary       BudgetSummary   `json:"summary"`
	Alert         *AlertEvent     `json:"alert,omitempty"`
	AsOf          time.Time       `json:"asOf"`
}

// BudgetOverview is the budget screen: the budget, its aggregates and the current alert
type BudgetOverview struct {
	MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
	Summary       BudgetSummary   `json:"summary"`
	Alert         *AlertEvent     `json:"alert,omitempty"`
	AsOf          time.Time       `json:"asOf"`
}
