package notify

import (
	"context"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogSink writes every notification to the structured log
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a LogSink on the global logger
func NewLogSink() *LogSink {
	return &LogSink{logger: log.Logger}
}

// NewLogSinkWithLogger creates a LogSink on logger
func NewLogSinkWithLogger(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Show implements domain.NotificationSink
func (s *LogSink) Show(ctx context.Context, n domain.Notification) {
	s.logger.Info().
		Str("notification_id", n.ID).
		Str("type", string(n.Type)).
		Str("user_id", domain.UserIDFromContext(ctx)).
		Str("title", n.Title).
		Msg(n.Message)
}
