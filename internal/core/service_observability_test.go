package core

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"creaturecore/pkg/domain"
)

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus) bool {
	for _, entry := range c.entries {
		if entry.Operation == op && entry.Status == status {
			return true
		}
	}
	return false
}

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Debug(msg string, _ ...any) { l.lines = append(l.lines, "DEBUG "+msg) }
func (l *captureLogger) Info(msg string, _ ...any)  { l.lines = append(l.lines, "INFO "+msg) }
func (l *captureLogger) Warn(msg string, _ ...any)  { l.lines = append(l.lines, "WARN "+msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.lines = append(l.lines, "ERROR "+msg) }

func TestServiceObservabilityHooks(t *testing.T) {
	ctx := context.Background()
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	audit := &captureAuditRecorder{}
	logger := &captureLogger{}

	svc := newTestService(t, 0,
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
		WithAuditRecorder(audit),
		WithLogger(logger),
	)

	id, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if !metrics.has("mint", true) {
		t.Fatal("missing mint success metric")
	}
	if !audit.has("mint", AuditStatusSuccess) {
		t.Fatal("missing mint audit entry")
	}
	if len(tracer.started) == 0 || tracer.started[0] != "mint" {
		t.Fatalf("spans started = %v", tracer.started)
	}
	if len(tracer.ended) == 0 || tracer.ended[0].err != nil {
		t.Fatalf("spans ended = %v", tracer.ended)
	}

	// A failed operation records error status across all hooks.
	if err := svc.Transfer(ctx, "bob", "carol", id); err == nil {
		t.Fatal("expected ownership error")
	}
	if !metrics.has("transfer", false) {
		t.Fatal("missing transfer error metric")
	}
	if !audit.has("transfer", AuditStatusError) {
		t.Fatal("missing transfer audit entry")
	}
	var sawError bool
	for _, line := range logger.lines {
		if strings.HasPrefix(line, "ERROR transfer") {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("log lines = %v", logger.lines)
	}
}

func TestAuditEntriesCarryActorAndEntity(t *testing.T) {
	ctx := context.Background()
	audit := &captureAuditRecorder{}
	svc := newTestService(t, 0, WithAuditRecorder(audit))

	id, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	var found bool
	for _, entry := range audit.entries {
		if entry.Operation == "mint" && entry.Actor == "alice" && entry.EntityID == id.String() {
			found = true
			if entry.At.IsZero() {
				t.Fatal("audit entry missing timestamp")
			}
		}
	}
	if !found {
		t.Fatalf("entries = %+v", audit.entries)
	}
}

func TestWithClockControlsDurations(t *testing.T) {
	ctx := context.Background()
	metrics := &captureMetricsRecorder{}
	now := time.Unix(1000, 0)
	svc := newTestService(t, 0,
		WithMetricsRecorder(metrics),
		WithClock(func() time.Time { return now }),
	)
	if _, err := svc.Mint(ctx, "alice", nil, nil); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if !metrics.has("mint", true) {
		t.Fatal("missing observation")
	}
}

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatal("missing generated name")
	}
	rec.Observe(context.Background(), "mint", true, 5*time.Millisecond)
	rec.Observe(context.Background(), "mint", false, 3*time.Millisecond)
	rec.Observe(context.Background(), "", true, time.Millisecond)

	snap := rec.Snapshot()
	if snap.DurationsMS["mint"] != 8 {
		t.Fatalf("durations = %v", snap.DurationsMS)
	}
	if snap.Results["mint"]["success"] != 1 || snap.Results["mint"]["error"] != 1 {
		t.Fatalf("results = %v", snap.Results)
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.Observe(context.Background(), "mint", true, 10*time.Millisecond)
	rec.Observe(context.Background(), "mint", false, 10*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	if !names["creaturecore_service_operation_duration_seconds"] || !names["creaturecore_service_operation_results_total"] {
		t.Fatalf("collected families = %v", names)
	}

	// Registering the same collectors twice must surface the conflict.
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestJSONTracerEmitsEntries(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "mint")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "buy")
	span.End(domain.ErrNotForSale)

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Operation != "mint" || entries[0].Status != "success" {
		t.Fatalf("first entry = %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error == "" {
		t.Fatalf("second entry = %+v", entries[1])
	}
	if !strings.Contains(buf.String(), `"operation":"buy"`) {
		t.Fatalf("encoded output = %s", buf.String())
	}
}
