package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// DashboardHandler handles dashboard and snapshot HTTP requests
type DashboardHandler struct {
	tracker *service.Tracker
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(tracker *service.Tracker) *DashboardHandler {
	return &DashboardHandler{tracker: tracker}
}

// CategoryAmountResponse represents spending for one category
type CategoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// DailyAmountResponse represents spending on one day
type DailyAmountResponse struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// DashboardResponse represents the dashboard
type DashboardResponse struct {
	AllTimeTotal     string                   `json:"allTimeTotal"`
	MonthlyTotal     string                   `json:"monthlyTotal"`
	TransactionCount int                      `json:"transactionCount"`
	RecentExpenses   []ExpenseResponse        `json:"recentExpenses"`
	ByCategory       []CategoryAmountResponse `json:"byCategory"`
	DailySpending    []DailyAmountResponse    `json:"dailySpending"`
}

// GetDashboard handles GET /dashboard
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	stats, err := h.tracker.Dashboard()
	if err != nil {
		return handleServiceError(c, err, "load dashboard")
	}

	resp := DashboardResponse{
		AllTimeTotal:     stats.AllTimeTotal.StringFixed(2),
		MonthlyTotal:     stats.MonthlyTotal.StringFixed(2),
		TransactionCount: stats.TransactionCount,
		RecentExpenses:   make([]ExpenseResponse, len(stats.RecentExpenses)),
		ByCategory:       make([]CategoryAmountResponse, len(stats.ByCategory)),
		DailySpending:    make([]DailyAmountResponse, len(stats.DailySpending)),
	}
	for i, e := range stats.RecentExpenses {
		resp.RecentExpenses[i] = toExpenseResponse(e)
	}
	for i, ca := range stats.ByCategory {
		resp.ByCategory[i] = CategoryAmountResponse{Category: string(ca.Category), Amount: ca.Amount.StringFixed(2)}
	}
	for i, d := range stats.DailySpending {
		resp.DailySpending[i] = DailyAmountResponse{Date: d.Date, Amount: d.Amount.StringFixed(2)}
	}

	return c.JSON(http.StatusOK, resp)
}

// GetSnapshot handles GET /snapshot
func (h *DashboardHandler) GetSnapshot(c echo.Context) error {
	snapshot, err := h.tracker.Snapshot()
	if err != nil {
		return handleServiceError(c, err, "load snapshot")
	}
	return c.JSON(http.StatusOK, snapshot)
}
