package core

import (
	"context"

	"creaturecore/pkg/domain"
)

// StaticCallerResolver always resolves to a fixed account. Useful for tools
// and single-tenant deployments.
type StaticCallerResolver struct {
	Account domain.AccountID
}

// Resolve implements CallerResolver.
func (r StaticCallerResolver) Resolve(context.Context) (domain.AccountID, error) {
	if r.Account == "" {
		return "", domain.ErrUnauthenticated
	}
	return r.Account, nil
}

type callerContextKey struct{}

// WithCaller stores the acting account on the context for
// ContextCallerResolver.
func WithCaller(ctx context.Context, account domain.AccountID) context.Context {
	return context.WithValue(ctx, callerContextKey{}, account)
}

// ContextCallerResolver reads the acting account from the context, as placed
// there by transport middleware via WithCaller.
type ContextCallerResolver struct{}

// Resolve implements CallerResolver.
func (ContextCallerResolver) Resolve(ctx context.Context) (domain.AccountID, error) {
	account, ok := ctx.Value(callerContextKey{}).(domain.AccountID)
	if !ok || account == "" {
		return "", domain.ErrUnauthenticated
	}
	return account, nil
}
