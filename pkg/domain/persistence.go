package domain

import "context"

// Transaction exposes the registry operations a persistence implementation
// must support within an atomic scope. Every mutation either commits wholly
// or leaves no observable trace.
type Transaction interface {
	Snapshot() TransactionView

	// CreateCreature inserts a new creature and performs the full mint
	// bookkeeping in order: counter overflow check (ErrCounterOverflow),
	// owner capacity append (ErrExceedMaxOwned), duplicate identifier check
	// (ErrDuplicateIdentifier), then insert plus counter increment.
	CreateCreature(Creature) (Creature, error)

	// UpdateCreature mutates an existing creature in place. The mutator may
	// not change identity-bearing fields; owner changes go through
	// TransferCreature so the ownership index stays consistent.
	UpdateCreature(id ID, mutator func(*Creature) error) (Creature, error)

	// TransferCreature reassigns ownership, moving the identifier from the
	// current owner's sequence to the receiver's (ErrExceedMaxOwned when the
	// receiver is at capacity) and clearing the sale price.
	TransferCreature(id ID, to AccountID) (Creature, error)
}

// TransactionView provides read-only access to registry state for rules and
// queries. Implementations return defensive copies.
type TransactionView interface {
	FindCreature(id ID) (Creature, bool)
	ListCreatures() []Creature
	OwnedBy(owner AccountID) []ID
	Owners() []AccountID
	Count() uint64
}

// PersistentStore is a minimal abstraction over durable registry backends.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetCreature(id ID) (Creature, bool)
	ListCreatures() []Creature
	OwnedBy(owner AccountID) []ID
	Count() uint64
}
