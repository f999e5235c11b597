package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the notification history
type NotificationHandler struct {
	tracker *service.Tracker
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(tracker *service.Tracker) *NotificationHandler {
	return &NotificationHandler{tracker: tracker}
}

// GetNotifications handles GET /notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	notifications, err := h.tracker.Notifications()
	if err != nil {
		return handleServiceError(c, err, "load notifications")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}
