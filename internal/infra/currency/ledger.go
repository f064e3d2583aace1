// Package currency provides an in-memory balance ledger used to settle
// purchases. It is a stand-in for an external payment system and implements
// the transfer contract the registry service expects.
package currency

import (
	"fmt"
	"sync"

	"creaturecore/pkg/domain"
)

var _ domain.CurrencyLedger = (*Ledger)(nil)

// Ledger tracks account balances in memory. Safe for concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	balances map[domain.AccountID]uint64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[domain.AccountID]uint64)}
}

// Deposit credits amount to the account.
func (l *Ledger) Deposit(account domain.AccountID, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// Balance returns the current balance of the account (zero if unknown).
func (l *Ledger) Balance(account domain.AccountID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

// Transfer moves amount from one account to the other. Returns
// domain.ErrInsufficientBalance when the payer cannot cover the amount; the
// ledger is left untouched on failure.
func (l *Ledger) Transfer(from, to domain.AccountID, amount uint64) error {
	if from == "" || to == "" {
		return fmt.Errorf("transfer requires both accounts")
	}
	if amount == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return domain.ErrInsufficientBalance
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}
