// Package notify defines the notification sink the settlement engine
// publishes to. How notifications are delivered or displayed is the
// consumer's concern.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Type classifies a notification for display purposes.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Notification is a single message for a member.
type Notification struct {
	Title   string
	Message string
	Type    Type
	// MemberID addresses the notification; empty means group-wide.
	MemberID string
}

// Sink receives notifications. Publish must not block on delivery.
type Sink interface {
	Publish(ctx context.Context, n Notification)
}

// LogSink writes notifications to a structured log. The default sink
// until a real delivery channel is wired up.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a LogSink writing to the given logger.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Publish logs the notification.
func (s *LogSink) Publish(_ context.Context, n Notification) {
	s.log.Info().
		Str("type", string(n.Type)).
		Str("member_id", n.MemberID).
		Str("title", n.Title).
		Msg(n.Message)
}
