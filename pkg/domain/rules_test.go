package domain

import (
	"context"
	"errors"
	"testing"
)

type stubRule struct {
	name   string
	result Result
	err    error
}

func (r stubRule) Name() string { return r.name }

func (r stubRule) Evaluate(context.Context, TransactionView, []Change) (Result, error) {
	return r.result, r.err
}

func TestRulesEngineAggregates(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "a", result: Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}}})
	engine.Register(stubRule{name: "b", result: Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock}}}})

	res, err := engine.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(res.Violations))
	}
	if !res.HasBlocking() {
		t.Fatal("expected blocking result")
	}
}

func TestRulesEnginePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "a", err: boom})
	if _, err := engine.Evaluate(context.Background(), nil, nil); !errors.Is(err, boom) {
		t.Fatalf("expected rule error, got %v", err)
	}
}

func TestResultMergeAndBlocking(t *testing.T) {
	var r Result
	r.Merge(Result{})
	if len(r.Violations) != 0 {
		t.Fatal("merging empty result must not allocate violations")
	}
	if r.HasBlocking() {
		t.Fatal("empty result must not block")
	}
	r.Merge(Result{Violations: []Violation{{Severity: SeverityLog}}})
	if r.HasBlocking() {
		t.Fatal("log severity must not block")
	}
}

func TestErrorTexts(t *testing.T) {
	id := ID{0xab}
	if got := (ErrNotFound{ID: id}).Error(); got == "" {
		t.Fatal("empty not-found message")
	}
	if got := (ErrDuplicateIdentifier{ID: id}).Error(); got == "" {
		t.Fatal("empty duplicate message")
	}
	if (RuleViolationError{}).Error() != "transaction blocked by rules" {
		t.Fatal("unexpected rule violation message")
	}
}
