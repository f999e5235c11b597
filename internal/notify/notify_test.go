package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotification() domain.Notification {
	return domain.Notification{
		ID:        "n-1",
		Title:     "Budget Alert",
		Message:   "You have exceeded your monthly budget!",
		Type:      domain.NotificationTypeBudget,
		Timestamp: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestLogSink_Show(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSinkWithLogger(zerolog.New(&buf))

	sink.Show(domain.WithUserID(context.Background(), "42"), sampleNotification())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "n-1", entry["notification_id"])
	assert.Equal(t, "budget", entry["type"])
	assert.Equal(t, "42", entry["user_id"])
	assert.Equal(t, "You have exceeded your monthly budget!", entry["message"])
}

func TestHubSink_Show(t *testing.T) {
	publisher := testutil.NewMockEventPublisher()
	sink := NewHubSink(publisher)

	sink.Show(domain.WithUserID(context.Background(), "42"), sampleNotification())

	require.Len(t, publisher.Events, 1)
	assert.Equal(t, "42", publisher.Events[0].UserID)
	assert.Equal(t, "notification.created", publisher.Events[0].Event.Type)
}

func TestHubSink_ShowWithoutUser(t *testing.T) {
	publisher := testutil.NewMockEventPublisher()
	sink := NewHubSink(publisher)

	sink.Show(context.Background(), sampleNotification())

	assert.Empty(t, publisher.Events)
}

type fakeChannel struct {
	published []amqp091.Publishing
	exchange  string
	key       string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange = exchange
	f.key = key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPSink_Show(t *testing.T) {
	ch := &fakeChannel{}
	sink := newAMQPSink(ch, "spendwise", "notifications")

	sink.Show(domain.WithUserID(context.Background(), "42"), sampleNotification())

	require.Len(t, ch.published, 1)
	assert.Equal(t, "spendwise", ch.exchange)
	assert.Equal(t, "notifications", ch.key)

	pub := ch.published[0]
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp091.Persistent, pub.DeliveryMode)
	assert.Equal(t, "n-1", pub.MessageId)

	msg, err := NotificationMessageFromJSON(pub.Body)
	require.NoError(t, err)
	assert.Equal(t, "42", msg.UserID)
	assert.Equal(t, "Budget Alert", msg.Title)
	assert.Equal(t, domain.NotificationTypeBudget, msg.Type)
}

func TestAMQPSink_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	sink := newAMQPSink(ch, "spendwise", "notifications")

	err := sink.Publish(context.Background(), NewNotificationMessage("", sampleNotification()))
	assert.ErrorContains(t, err, "publish message")

	// Show swallows the failure
	assert.NotPanics(t, func() { sink.Show(context.Background(), sampleNotification()) })
}

func TestAMQPSink_Close(t *testing.T) {
	ch := &fakeChannel{}
	sink := newAMQPSink(ch, "x", "q")

	require.NoError(t, sink.Close())
	assert.True(t, ch.closed)
}

func TestNotificationMessageFromJSON_Invalid(t *testing.T) {
	_, err := NotificationMessageFromJSON([]byte("{"))
	assert.Error(t, err)
}
