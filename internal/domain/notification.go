package domain

import (
	"context"
	"time"
)

// NotificationType groups notifications for display
type NotificationType string

const (
	NotificationTypeExpense NotificationType = "expense"
	NotificationTypeBudget  NotificationType = "budget"
	NotificationTypeSystem  NotificationType = "system"
)

// Notification is a user-facing message
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
}

// NotificationSink shows a message to the user.
// Delivery is fire-and-forget; implementations log their own failures.
type NotificationSink interface {
	Show(ctx context.Context, n Notification)
}
