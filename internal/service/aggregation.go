package service

import (
	"sort"
	"strings"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/shopspring/decimal"
)

const (
	percentagePlaces   = 4
	recentExpenseCount = 5
	dailySpendingDays  = 7
)

var hundred = decimal.NewFromInt(100)

// ComputeSummary derives the budget figures for the calendar month of asOf.
// It is pure: it neither mutates expenses nor depends on anything but its arguments.
func ComputeSummary(expenses []*domain.Expense, monthlyBudget decimal.Decimal, asOf time.Time) domain.BudgetSummary {
	totalSpent := MonthlyTotal(expenses, asOf)

	remaining := monthlyBudget.Sub(totalSpent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	// Truncated, not rounded: 99.99999% must stay below the exceeded threshold
	percentage := decimal.Zero
	if monthlyBudget.IsPositive() {
		percentage, _ = totalSpent.Mul(hundred).QuoRem(monthlyBudget, percentagePlaces)
	}

	return domain.BudgetSummary{
		TotalSpent:         totalSpent,
		RemainingBudget:    remaining,
		SpendingPercentage: percentage,
	}
}

// MonthlyTotal sums the amounts of expenses attributed to asOf's month and year
func MonthlyTotal(expenses []*domain.Expense, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e == nil {
			continue
		}
		if util.SameMonth(e.AttributionDate(), asOf) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// AllTimeTotal sums every expense amount
func AllTimeTotal(expenses []*domain.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e != nil {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// ComputeDashboardStats builds the dashboard metrics for asOf
func ComputeDashboardStats(expenses []*domain.Expense, asOf time.Time) *domain.DashboardStats {
	recent := make([]*domain.Expense, 0, recentExpenseCount)
	for _, e := range expenses {
		if e == nil {
			continue
		}
		if len(recent) == recentExpenseCount {
			break
		}
		recent = append(recent, e.Clone())
	}

	return &domain.DashboardStats{
		AllTimeTotal:     AllTimeTotal(expenses),
		MonthlyTotal:     MonthlyTotal(expenses, asOf),
		TransactionCount: len(expenses),
		RecentExpenses:   recent,
		ByCategory:       CategoryBreakdown(expenses, asOf),
		DailySpending:    DailySpending(expenses, asOf, dailySpendingDays),
	}
}

// CategoryBreakdown totals asOf's month by category, largest first
func CategoryBreakdown(expenses []*domain.Expense, asOf time.Time) []domain.CategoryAmount {
	totals := make(map[domain.Category]decimal.Decimal)
	for _, e := range expenses {
		if e == nil || !util.SameMonth(e.AttributionDate(), asOf) {
			continue
		}
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}

	result := make([]domain.CategoryAmount, 0, len(totals))
	for category, amount := range totals {
		result = append(result, domain.CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(result, func(i, j int) bool {
		if cmp := result[i].Amount.Cmp(result[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// DailySpending totals each of the last days calendar days ending at asOf, oldest first
func DailySpending(expenses []*domain.Expense, asOf time.Time, days int) []domain.DailyAmount {
	if days <= 0 {
		return []domain.DailyAmount{}
	}

	result := make([]domain.DailyAmount, days)
	start := util.StartOfDay(asOf).AddDate(0, 0, -(days - 1))
	for i := range result {
		day := start.AddDate(0, 0, i)
		result[i] = domain.DailyAmount{Date: day.Format("2006-01-02"), Amount: decimal.Zero}
	}

	for _, e := range expenses {
		if e == nil {
			continue
		}
		for i := range result {
			if util.SameDay(e.AttributionDate(), start.AddDate(0, 0, i)) {
				result[i].Amount = result[i].Amount.Add(e.Amount)
				break
			}
		}
	}
	return result
}

// FilterExpenses returns expenses whose description or category contains query,
// ignoring case. An empty query matches everything.
func FilterExpenses(expenses []*domain.Expense, query string) []*domain.Expense {
	query = strings.ToLower(strings.TrimSpace(query))

	result := make([]*domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e == nil {
			continue
		}
		if query == "" ||
			strings.Contains(strings.ToLower(e.Description), query) ||
			strings.Contains(strings.ToLower(string(e.Category)), query) {
			result = append(result, e)
		}
	}
	return result
}
