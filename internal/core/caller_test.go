package core

import (
	"context"
	"errors"
	"testing"

	"creaturecore/pkg/domain"
)

func TestStaticCallerResolver(t *testing.T) {
	account, err := StaticCallerResolver{Account: "operator"}.Resolve(context.Background())
	if err != nil || account != "operator" {
		t.Fatalf("resolve = %s, %v", account, err)
	}
	if _, err := (StaticCallerResolver{}).Resolve(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v", err)
	}
}

func TestContextCallerResolver(t *testing.T) {
	var resolver ContextCallerResolver
	if _, err := resolver.Resolve(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("bare context err = %v", err)
	}
	ctx := WithCaller(context.Background(), "alice")
	account, err := resolver.Resolve(ctx)
	if err != nil || account != "alice" {
		t.Fatalf("resolve = %s, %v", account, err)
	}
	if _, err := resolver.Resolve(WithCaller(context.Background(), "")); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("empty account err = %v", err)
	}
}
