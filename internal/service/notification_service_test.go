package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_Messages(t *testing.T) {
	sink := testutil.NewMockSink()
	svc := NewNotificationService(fixedClock, sink)
	ctx := context.Background()

	added := svc.ExpenseAdded(ctx, dec("50"))
	deleted := svc.ExpenseDeleted(ctx, dec("12.5"))
	budget := svc.BudgetUpdated(ctx, dec("1200"))

	assert.Equal(t, "Expense Added", added.Title)
	assert.Equal(t, "Successfully added expense of $50.00", added.Message)
	assert.Equal(t, domain.NotificationTypeExpense, added.Type)

	assert.Equal(t, "Expense Deleted", deleted.Title)
	assert.Equal(t, "Successfully deleted expense of $12.50", deleted.Message)

	assert.Equal(t, "Budget Updated", budget.Title)
	assert.Equal(t, "Your monthly budget has been set to $1200.00", budget.Message)
	assert.Equal(t, domain.NotificationTypeBudget, budget.Type)

	assert.Equal(t, []string{"Expense Added", "Expense Deleted", "Budget Updated"}, sink.Titles())
	assert.Equal(t, fixedNow, added.Timestamp)
	assert.NotEmpty(t, added.ID)
}

func TestNotificationService_BudgetAlert(t *testing.T) {
	sink := testutil.NewMockSink()
	svc := NewNotificationService(fixedClock, sink)

	n := svc.BudgetAlert(context.Background(), EvaluateAlert(dec("120")))

	assert.Equal(t, "Budget Exceeded", n.Title)
	assert.Equal(t, "You have exceeded your monthly budget!", n.Message)
	require.Len(t, sink.Shown, 1)
}

func TestNotificationService_HistoryNewestFirst(t *testing.T) {
	svc := NewNotificationService(fixedClock)
	ctx := context.Background()

	svc.Notify(ctx, "first", "1", domain.NotificationTypeSystem)
	svc.Notify(ctx, "second", "2", domain.NotificationTypeSystem)

	history := svc.History()
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Title)
	assert.Equal(t, "first", history[1].Title)
}

func TestNotificationService_HistoryCapped(t *testing.T) {
	svc := NewNotificationService(fixedClock)
	ctx := context.Background()

	for i := 0; i < MaxNotificationHistory+25; i++ {
		svc.Notify(ctx, fmt.Sprintf("n%d", i), "", domain.NotificationTypeSystem)
	}

	history := svc.History()
	assert.Len(t, history, MaxNotificationHistory)
	assert.Equal(t, fmt.Sprintf("n%d", MaxNotificationHistory+24), history[0].Title)
}

func TestNotificationService_AddSinkAndClear(t *testing.T) {
	svc := NewNotificationService(fixedClock)
	sink := testutil.NewMockSink()
	svc.AddSink(sink)

	svc.Notify(context.Background(), "hello", "world", domain.NotificationTypeSystem)
	assert.Len(t, sink.Shown, 1)

	svc.Clear()
	assert.Empty(t, svc.History())
}
