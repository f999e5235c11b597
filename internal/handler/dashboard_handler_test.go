package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboard(t *testing.T) {
	env := newTestEnv(t)
	lastMonth := time.Date(2025, 2, 20, 10, 0, 0, 0, time.UTC)
	env.backend.AddExpense(&domain.Expense{ID: "a", Amount: dec("100"), Description: "Rent share", Category: domain.CategoryUtilities, Date: &lastMonth, CreatedAt: lastMonth})
	env.backend.AddExpense(&domain.Expense{ID: "b", Amount: dec("30"), Description: "Lunch", Category: domain.CategoryFood, CreatedAt: testNow})
	env.backend.AddExpense(&domain.Expense{ID: "c", Amount: dec("20"), Description: "Dinner", Category: domain.CategoryFood, CreatedAt: testNow})
	env.login(t)
	h := NewDashboardHandler(env.tracker)

	c, rec := env.newContext(http.MethodGet, "/api/v1/dashboard", nil, true)
	require.NoError(t, h.GetDashboard(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "150.00", resp.AllTimeTotal)
	assert.Equal(t, "50.00", resp.MonthlyTotal)
	assert.Equal(t, 3, resp.TransactionCount)
	// only the current month is broken down
	require.Len(t, resp.ByCategory, 1)
	assert.Equal(t, "Food", resp.ByCategory[0].Category)
	assert.Equal(t, "50.00", resp.ByCategory[0].Amount)
	assert.Len(t, resp.DailySpending, 7)
}

func TestGetSnapshot(t *testing.T) {
	env := newTestEnv(t)
	h := NewDashboardHandler(env.tracker)

	c, rec := env.newContext(http.MethodGet, "/api/v1/snapshot", nil, true)
	require.NoError(t, h.GetSnapshot(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.login(t)
	c, rec = env.newContext(http.MethodGet, "/api/v1/snapshot", nil, true)
	require.NoError(t, h.GetSnapshot(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var snapshot domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.True(t, snapshot.MonthlyBudget.Equal(dec("1000")))
}

func TestGetNotifications(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	expenses := NewExpenseHandler(env.tracker)
	h := NewNotificationHandler(env.tracker)

	c, rec := env.newContext(http.MethodPost, "/api/v1/expenses", createBody("12"), true)
	require.NoError(t, expenses.CreateExpense(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = env.newContext(http.MethodGet, "/api/v1/notifications", nil, true)
	require.NoError(t, h.GetNotifications(c))

	var resp struct {
		Notifications []domain.Notification `json:"notifications"`
		Count         int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Expense Added", resp.Notifications[0].Title)
	assert.Equal(t, "Successfully added expense of $12.00", resp.Notifications[0].Message)
}
