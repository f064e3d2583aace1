package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by lifecycle operations. None are retried
// internally: every failure is either a precondition violation or a hard
// resource limit, and the triggering operation is rejected in its entirety.
var (
	// ErrCounterOverflow signals the global creature counter is at its maximum.
	ErrCounterOverflow = errors.New("creature counter overflow")
	// ErrExceedMaxOwned signals an owner's sequence is already at capacity.
	ErrExceedMaxOwned = errors.New("owner at maximum creature capacity")
	// ErrUnauthenticated signals the caller identity could not be resolved.
	ErrUnauthenticated = errors.New("caller identity could not be resolved")
	// ErrNotOwner signals the caller does not own the referenced creature.
	ErrNotOwner = errors.New("caller does not own creature")
	// ErrTransferToSelf signals a transfer targeting the current owner.
	ErrTransferToSelf = errors.New("cannot transfer creature to its current owner")
	// ErrBuyerIsOwner signals a purchase attempt by the current owner.
	ErrBuyerIsOwner = errors.New("buyer already owns creature")
	// ErrNotForSale signals the creature has no asking price.
	ErrNotForSale = errors.New("creature is not for sale")
	// ErrBidPriceTooLow signals a bid below the asking price.
	ErrBidPriceTooLow = errors.New("bid price below asking price")
	// ErrInsufficientBalance signals the buyer cannot cover the bid.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrNoLedger signals a purchase attempt without a configured ledger.
	ErrNoLedger = errors.New("no currency ledger configured")
)

// ErrNotFound is returned when a referenced identifier is absent from the
// registry. No mutation occurs before this check where it gates an operation.
type ErrNotFound struct {
	ID ID
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("creature %s not found", e.ID)
}

// ErrDuplicateIdentifier is returned on an identifier collision during insert.
// Under a collision-resistant hash this indicates bit-identical content and is
// treated as a fatal invariant violation: the whole operation aborts rather
// than silently overwriting.
type ErrDuplicateIdentifier struct {
	ID ID
}

func (e ErrDuplicateIdentifier) Error() string {
	return fmt.Sprintf("creature %s already exists", e.ID)
}
