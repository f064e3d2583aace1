// Package core wires the registry service together: lifecycle operations,
// validation rules, configuration, observability, and storage selection.
package core

import "creaturecore/pkg/domain"

// Aliases so service callers work against a single package.
type (
	ID        = domain.ID
	DNA       = domain.DNA
	AccountID = domain.AccountID
	Gender    = domain.Gender
	Creature  = domain.Creature

	Result      = domain.Result
	Violation   = domain.Violation
	Severity    = domain.Severity
	Rule        = domain.Rule
	RulesEngine = domain.RulesEngine

	Event            = domain.Event
	EventSink        = domain.EventSink
	CallerResolver   = domain.CallerResolver
	CurrencyLedger   = domain.CurrencyLedger
	RandomnessSource = domain.RandomnessSource
	HeightOracle     = domain.HeightOracle
	PersistentStore  = domain.PersistentStore
)

// NewRulesEngine re-exports the domain constructor.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }

// DefaultRulesEngine returns an engine with the standard registry rules
// registered for the given ownership cap.
func DefaultRulesEngine(maxOwned uint32) *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewOwnershipCapacityRule(maxOwned))
	engine.Register(NewRegistryIntegrityRule())
	return engine
}
