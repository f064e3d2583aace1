package core

import (
	"context"
	"log/slog"
	"time"

	"creaturecore/pkg/domain"
)

// Logger captures the leveled structured logging surface the service emits
// through. Args are alternating key/value pairs as in log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NewSlogLogger adapts a slog.Logger to the service Logger interface. A nil
// argument uses slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer creates spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span; err is nil on success.
type TraceSpan interface {
	End(err error)
}

// AuditStatus marks the outcome of an audited operation.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry records one mutating service operation.
type AuditEntry struct {
	Operation string           `json:"operation"`
	Status    AuditStatus      `json:"status"`
	Actor     domain.AccountID `json:"actor,omitempty"`
	EntityID  string           `json:"entity_id,omitempty"`
	Error     string           `json:"error,omitempty"`
	At        time.Time        `json:"at"`
}

// AuditRecorder persists audit entries. Recording is best-effort and must not
// affect operation outcomes.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}
