package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles monthly budget HTTP requests
type BudgetHandler struct {
	tracker *service.Tracker
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(tracker *service.Tracker) *BudgetHandler {
	return &BudgetHandler{tracker: tracker}
}

// SetBudgetRequest represents the set budget request body
type SetBudgetRequest struct {
	Amount formValue `json:"amount"`
}

// AlertResponse represents a budget alert
type AlertResponse struct {
	Level      string `json:"level"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Percentage string `json:"percentage"`
}

// BudgetResponse represents the budget screen
type BudgetResponse struct {
	MonthlyBudget      string         `json:"monthlyBudget"`
	TotalSpent         string         `json:"totalSpent"`
	RemainingBudget    string         `json:"remainingBudget"`
	SpendingPercentage string         `json:"spendingPercentage"`
	Alert              *AlertResponse `json:"alert,omitempty"`
	AsOf               string         `json:"asOf"`
}

// GetBudget handles GET /budget
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	overview, err := h.tracker.BudgetOverview()
	if err != nil {
		return handleServiceError(c, err, "load budget")
	}
	return c.JSON(http.StatusOK, toBudgetResponse(overview))
}

// SetBudget handles PUT /budget
func (h *BudgetHandler) SetBudget(c echo.Context) error {
	var req SetBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	raw := strings.TrimSpace(string(req.Amount))
	if raw == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Budget is required"},
		})
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Please enter a valid number"},
		})
	}

	overview, err := h.tracker.SetBudget(c.Request().Context(), amount)
	if err != nil {
		return handleServiceError(c, err, "update budget")
	}
	return c.JSON(http.StatusOK, toBudgetResponse(overview))
}

func toBudgetResponse(o *domain.BudgetOverview) BudgetResponse {
	return BudgetResponse{
		MonthlyBudget:      o.MonthlyBudget.StringFixed(2),
		TotalSpent:         o.Summary.TotalSpent.StringFixed(2),
		RemainingBudget:    o.Summary.RemainingBudget.StringFixed(2),
		SpendingPercentage: o.Summary.SpendingPercentage.StringFixed(1),
		Alert:              toAlertResponse(o.Alert),
		AsOf:               o.AsOf.Format(time.RFC3339),
	}
}

func toAlertResponse(a *domain.AlertEvent) *AlertResponse {
	if a == nil {
		return nil
	}
	return &AlertResponse{
		Level:      string(a.Level),
		Title:      a.Title,
		Message:    a.Message,
		Percentage: a.Percentage.StringFixed(1),
	}
}
