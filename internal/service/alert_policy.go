package service

import (
	"fmt"
	"sync"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	titleBudgetWarning  = "Budget Warning"
	titleBudgetExceeded = "Budget Exceeded"
)

// ClassifySpending maps a spending percentage to its alert level
func ClassifySpending(percentage decimal.Decimal) domain.AlertLevel {
	switch {
	case percentage.GreaterThanOrEqual(domain.ExceededThreshold):
		return domain.AlertLevelExceeded
	case percentage.GreaterThanOrEqual(domain.WarningThreshold):
		return domain.AlertLevelWarning
	default:
		return domain.AlertLevelNone
	}
}

// EvaluateAlert returns the alert for percentage, or nil below the warning threshold.
// It holds no state and is safe to call from anywhere.
func EvaluateAlert(percentage decimal.Decimal) *domain.AlertEvent {
	switch ClassifySpending(percentage) {
	case domain.AlertLevelExceeded:
		return &domain.AlertEvent{
			Level:      domain.AlertLevelExceeded,
			Title:      titleBudgetExceeded,
			Message:    "You have exceeded your monthly budget!",
			Percentage: percentage,
		}
	case domain.AlertLevelWarning:
		return &domain.AlertEvent{
			Level:      domain.AlertLevelWarning,
			Title:      titleBudgetWarning,
			Message:    fmt.Sprintf("You've used %s%% of your monthly budget.", percentage.StringFixed(1)),
			Percentage: percentage,
		}
	default:
		return nil
	}
}

// AlertGuard suppresses repeated alerts of the same level.
// A level fires once and fires again only after the level changes;
// dropping below the warning threshold re-arms both levels.
type AlertGuard struct {
	enabled bool
	last    domain.AlertLevel
	mu      sync.Mutex
}

// NewAlertGuard creates a new AlertGuard. A disabled guard lets every alert through.
func NewAlertGuard(enabled bool) *AlertGuard {
	return &AlertGuard{enabled: enabled}
}

// Allow reports whether alert should be delivered and records its level
func (g *AlertGuard) Allow(alert *domain.AlertEvent) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if alert == nil {
		g.last = domain.AlertLevelNone
		return false
	}
	if !g.enabled {
		return true
	}
	if alert.Level == g.last {
		return false
	}
	g.last = alert.Level
	return true
}

// Reset re-arms the guard, e.g. after logout
func (g *AlertGuard) Reset() {
	g.mu.Lock()
	g.last = domain.AlertLevelNone
	g.mu.Unlock()
}
