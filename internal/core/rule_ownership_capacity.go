package core

import (
	"context"
	"fmt"

	"creaturecore/pkg/domain"
)

// OwnershipCapacityRule blocks commits that would leave any owner holding
// more creatures than the configured cap. A zero cap disables the rule.
type OwnershipCapacityRule struct {
	maxOwned uint32
}

// NewOwnershipCapacityRule constructs the rule for the given cap.
func NewOwnershipCapacityRule(maxOwned uint32) *OwnershipCapacityRule {
	return &OwnershipCapacityRule{maxOwned: maxOwned}
}

// Name implements Rule.
func (r *OwnershipCapacityRule) Name() string { return "ownership_capacity" }

// Evaluate implements Rule.
func (r *OwnershipCapacityRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	if r.maxOwned == 0 {
		return domain.Result{}, nil
	}
	var result domain.Result
	for _, owner := range view.Owners() {
		if held := len(view.OwnedBy(owner)); held > int(r.maxOwned) {
			result.Violations = append(result.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("owner %s holds %d creatures, cap is %d", owner, held, r.maxOwned),
				Entity:   domain.EntityOwnership,
				EntityID: string(owner),
			})
		}
	}
	return result, nil
}
