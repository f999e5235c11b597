package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	Auth         *AuthHandler
	Expense      *ExpenseHandler
	Budget       *BudgetHandler
	Dashboard    *DashboardHandler
	Notification *NotificationHandler
	WebSocket    *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, sessionAuth *middleware.SessionAuthMiddleware, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API version 1
	api := e.Group("/api/v1")

	// Public routes
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/categories", h.Expense.GetCategories)

	// Everything else requires the active session
	protected := api.Group("")
	protected.Use(sessionAuth.Authenticate())

	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/logout", h.Auth.Logout)

	protected.GET("/expenses", h.Expense.GetExpenses)
	protected.POST("/expenses", h.Expense.CreateExpense)
	protected.POST("/expenses/refresh", h.Expense.RefreshExpenses)
	protected.GET("/expenses/:id", h.Expense.GetExpense)
	protected.DELETE("/expenses/:id", h.Expense.DeleteExpense)

	protected.GET("/budget", h.Budget.GetBudget)
	protected.PUT("/budget", h.Budget.SetBudget)

	protected.GET("/dashboard", h.Dashboard.GetDashboard)
	protected.GET("/snapshot", h.Dashboard.GetSnapshot)

	protected.GET("/notifications", h.Notification.GetNotifications)

	if h.WebSocket != nil {
		protected.GET("/ws", h.WebSocket.HandleWS)
	}
}
