package core

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"creaturecore/pkg/domain"
)

// EventEnvelope wraps a lifecycle event with a unique delivery identifier and
// an emission timestamp, for sinks that forward events off-process.
type EventEnvelope struct {
	ID      uuid.UUID        `json:"id"`
	Kind    domain.EventKind `json:"kind"`
	At      time.Time        `json:"at"`
	Payload domain.Event     `json:"payload"`
}

// NewEventEnvelope wraps an event for delivery.
func NewEventEnvelope(event domain.Event) EventEnvelope {
	return EventEnvelope{
		ID:      uuid.New(),
		Kind:    event.Kind(),
		At:      time.Now().UTC(),
		Payload: event,
	}
}

type noopEventSink struct{}

func (noopEventSink) Notify(domain.Event) {}

// LoggingEventSink emits lifecycle events through the service logger.
type LoggingEventSink struct {
	logger Logger
}

// NewLoggingEventSink constructs a sink writing one log line per event.
func NewLoggingEventSink(logger Logger) *LoggingEventSink {
	if logger == nil {
		logger = noopLogger{}
	}
	return &LoggingEventSink{logger: logger}
}

// Notify implements EventSink.
func (s *LoggingEventSink) Notify(event domain.Event) {
	env := NewEventEnvelope(event)
	s.logger.Info("lifecycle event", "event_id", env.ID.String(), "kind", string(env.Kind), "payload", env.Payload)
}

// RecordingEventSink retains events for inspection in tests.
type RecordingEventSink struct {
	mu        sync.Mutex
	envelopes []EventEnvelope
}

// NewRecordingEventSink constructs an empty recording sink.
func NewRecordingEventSink() *RecordingEventSink { return &RecordingEventSink{} }

// Notify implements EventSink.
func (s *RecordingEventSink) Notify(event domain.Event) {
	env := NewEventEnvelope(event)
	s.mu.Lock()
	s.envelopes = append(s.envelopes, env)
	s.mu.Unlock()
}

// Envelopes returns a copy of all recorded envelopes.
func (s *RecordingEventSink) Envelopes() []EventEnvelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EventEnvelope, len(s.envelopes))
	copy(out, s.envelopes)
	return out
}

// Events returns the recorded event payloads in emission order.
func (s *RecordingEventSink) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Event, len(s.envelopes))
	for i, env := range s.envelopes {
		out[i] = env.Payload
	}
	return out
}
