package core

import (
	"context"
	"fmt"

	"creaturecore/pkg/domain"
)

// RegistryIntegrityRule blocks commits that break the registry bookkeeping:
// the lifetime counter must equal the number of stored creatures, every
// indexed identifier must resolve to a creature held by that owner, the
// index must be duplicate-free, and every creature must appear in its
// owner's sequence.
type RegistryIntegrityRule struct{}

// NewRegistryIntegrityRule constructs the rule.
func NewRegistryIntegrityRule() *RegistryIntegrityRule { return &RegistryIntegrityRule{} }

// Name implements Rule.
func (r *RegistryIntegrityRule) Name() string { return "registry_integrity" }

// Evaluate implements Rule.
func (r *RegistryIntegrityRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	var result domain.Result
	block := func(entity domain.EntityType, entityID, format string, args ...any) {
		result.Violations = append(result.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf(format, args...),
			Entity:   entity,
			EntityID: entityID,
		})
	}

	creatures := view.ListCreatures()
	if count := view.Count(); count != uint64(len(creatures)) {
		block(domain.EntityCreature, "", "counter %d does not match %d stored creatures", count, len(creatures))
	}

	indexed := make(map[domain.ID]domain.AccountID)
	for _, owner := range view.Owners() {
		seen := make(map[domain.ID]struct{})
		for _, id := range view.OwnedBy(owner) {
			if _, dup := seen[id]; dup {
				block(domain.EntityOwnership, string(owner), "creature %s indexed twice under %s", id, owner)
				continue
			}
			seen[id] = struct{}{}
			indexed[id] = owner
			c, ok := view.FindCreature(id)
			if !ok {
				block(domain.EntityOwnership, string(owner), "index references missing creature %s", id)
				continue
			}
			if c.Owner != owner {
				block(domain.EntityOwnership, string(owner), "creature %s indexed under %s but owned by %s", id, owner, c.Owner)
			}
		}
	}
	for _, c := range creatures {
		if _, ok := indexed[c.ID]; !ok {
			block(domain.EntityCreature, c.ID.String(), "creature %s missing from its owner's index", c.ID)
		}
	}
	return result, nil
}
