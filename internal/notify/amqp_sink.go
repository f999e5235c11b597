package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// amqpChannel is the part of *amqp091.Channel the sink publishes through
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPSink publishes notifications to a durable direct exchange
type AMQPSink struct {
	conn         *amqp091.Connection
	channel      amqpChannel
	exchangeName string
	queueName    string
}

// NewAMQPSink dials url and declares the exchange and queue
func NewAMQPSink(url, exchangeName, queueName string) (*AMQPSink, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := setupTopology(channel, exchangeName, queueName); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	sink := newAMQPSink(channel, exchangeName, queueName)
	sink.conn = conn
	return sink, nil
}

func newAMQPSink(channel amqpChannel, exchangeName, queueName string) *AMQPSink {
	return &AMQPSink{channel: channel, exchangeName: exchangeName, queueName: queueName}
}

func setupTopology(ch *amqp091.Channel, exchangeName, queueName string) error {
	if err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends one notification message
func (s *AMQPSink) Publish(ctx context.Context, msg *NotificationMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.channel.PublishWithContext(
		ctx,
		s.exchangeName, // exchange
		s.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.PublishedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Show implements domain.NotificationSink. Failures are logged.
func (s *AMQPSink) Show(ctx context.Context, n domain.Notification) {
	msg := NewNotificationMessage(domain.UserIDFromContext(ctx), n)
	if err := s.Publish(ctx, msg); err != nil {
		log.Error().Err(err).
			Str("notification_id", n.ID).
			Str("exchange", s.exchangeName).
			Msg("Failed to publish notification")
		return
	}
	log.Debug().
		Str("notification_id", n.ID).
		Str("exchange", s.exchangeName).
		Str("queue", s.queueName).
		Msg("Published notification")
}

// Close releases the channel and connection
func (s *AMQPSink) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
