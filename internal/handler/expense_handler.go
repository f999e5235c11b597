package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	tracker *service.Tracker
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(tracker *service.Tracker) *ExpenseHandler {
	return &ExpenseHandler{tracker: tracker}
}

// formValue is a form field that may arrive as a JSON string or number
type formValue string

func (v *formValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = formValue(s)
		return nil
	}
	*v = formValue(data)
	return nil
}

// CreateExpenseRequest represents the create expense request body
type CreateExpenseRequest struct {
	Amount      formValue `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        string    `json:"date,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          string  `json:"id"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        *string `json:"date,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

// ExpenseListResponse wraps a list of expenses
type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Count    int               `json:"count"`
}

// CreateExpense handles POST /expenses
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	expense, err := h.tracker.AddExpense(c.Request().Context(), service.ExpenseInput{
		Amount:      string(req.Amount),
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
	})
	if err != nil {
		return handleServiceError(c, err, "add expense")
	}
	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// GetExpenses handles GET /expenses with an optional ?q= search
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	expenses, err := h.tracker.ListExpenses(c.QueryParam("q"))
	if err != nil {
		return handleServiceError(c, err, "load expenses")
	}
	return c.JSON(http.StatusOK, toExpenseListResponse(expenses))
}

// GetExpense handles GET /expenses/:id
func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	expense, err := h.tracker.GetExpense(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleServiceError(c, err, "load expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense handles DELETE /expenses/:id
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	removed, err := h.tracker.DeleteExpense(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleServiceError(c, err, "delete expense")
	}
	if !removed {
		return NewNotFoundError(c, "Expense not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// RefreshExpenses handles POST /expenses/refresh
func (h *ExpenseHandler) RefreshExpenses(c echo.Context) error {
	expenses, err := h.tracker.Refresh(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "refresh expenses")
	}
	return c.JSON(http.StatusOK, toExpenseListResponse(expenses))
}

// GetCategories handles GET /categories
func (h *ExpenseHandler) GetCategories(c echo.Context) error {
	names := make([]string, len(domain.Categories))
	for i, cat := range domain.Categories {
		names[i] = string(cat)
	}
	return c.JSON(http.StatusOK, map[string][]string{"categories": names})
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:          e.ID,
		Amount:      e.Amount.StringFixed(2),
		Description: e.Description,
		Category:    string(e.Category),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
	if e.Date != nil {
		d := e.Date.Format("2006-01-02")
		resp.Date = &d
	}
	return resp
}

func toExpenseListResponse(expenses []*domain.Expense) ExpenseListResponse {
	items := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		items[i] = toExpenseResponse(e)
	}
	return ExpenseListResponse{Expenses: items, Count: len(items)}
}
