package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGetBudget_Default(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	h := NewBudgetHandler(env.tracker)

	c, rec := env.newContext(http.MethodGet, "/api/v1/budget", nil, true)
	require.NoError(t, h.GetBudget(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1000.00", resp.MonthlyBudget)
	assert.Equal(t, "0.00", resp.TotalSpent)
	assert.Equal(t, "1000.00", resp.RemainingBudget)
	assert.Nil(t, resp.Alert)
}

func TestSetBudget_ReportsAlert(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	expenses := NewExpenseHandler(env.tracker)
	h := NewBudgetHandler(env.tracker)

	c, rec := env.newContext(http.MethodPost, "/api/v1/expenses", createBody("450"), true)
	require.NoError(t, expenses.CreateExpense(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = env.newContext(http.MethodPut, "/api/v1/budget", map[string]string{"amount": "500"}, true)
	require.NoError(t, h.SetBudget(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "500.00", resp.MonthlyBudget)
	assert.Equal(t, "50.00", resp.RemainingBudget)
	assert.Equal(t, "90.0", resp.SpendingPercentage)
	require.NotNil(t, resp.Alert)
	assert.Equal(t, string(domain.AlertLevelWarning), resp.Alert.Level)

	stored, ok := env.kv.Value(domain.KeyMonthlyBudget)
	require.True(t, ok)
	assert.Equal(t, "500", stored)
}

func TestSetBudget_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    interface{}
		message string
	}{
		{"missing", map[string]string{}, "Budget is required"},
		{"not a number", map[string]string{"amount": "lots"}, "Please enter a valid number"},
		{"negative", map[string]interface{}{"amount": -5}, "Budget must be zero or positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.login(t)
			h := NewBudgetHandler(env.tracker)

			c, rec := env.newContext(http.MethodPut, "/api/v1/budget", tt.body, true)
			require.NoError(t, h.SetBudget(c))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			p := decodeProblem(t, rec)
			require.Len(t, p.Errors, 1)
			assert.Equal(t, tt.message, p.Errors[0].Message)
		})
	}
}
