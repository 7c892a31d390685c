package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

// LogActivitySink writes session events to the structured log. It is the
// default sink when no audit store is configured.
type LogActivitySink struct {
	log zerolog.Logger
}

func NewLogActivitySink(log zerolog.Logger) *LogActivitySink {
	return &LogActivitySink{log: log}
}

func (s *LogActivitySink) Record(_ context.Context, event domain.SessionEvent) error {
	s.log.Info().
		Str("event", string(event.Type)).
		Str("session", event.SessionKey).
		Str("user_id", string(event.UserID)).
		Stringer("role", event.Role).
		Stringer("from", event.From).
		Stringer("to", event.To).
		Str("reason", event.Reason).
		Time("occurred_at", event.OccurredAt).
		Msg("session event")
	return nil
}

// MultiActivitySink fans an event out to several sinks and returns the first
// error after trying all of them.
type MultiActivitySink []ports.ActivitySink

func (m MultiActivitySink) Record(ctx context.Context, event domain.SessionEvent) error {
	var first error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
