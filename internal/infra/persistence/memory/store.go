// Package memory provides the in-memory implementation of the registry
// persistence contract. Transactions operate on a cloned copy of the state
// and commit by swapping it in, so an aborted operation leaves no observable
// trace and concurrent readers only ever see committed state.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"creaturecore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

type registryState struct {
	creatures map[domain.ID]domain.Creature
	owned     map[domain.AccountID][]domain.ID
	count     uint64
}

func newRegistryState() registryState {
	return registryState{
		creatures: make(map[domain.ID]domain.Creature),
		owned:     make(map[domain.AccountID][]domain.ID),
	}
}

func (s registryState) clone() registryState {
	cloned := newRegistryState()
	cloned.count = s.count
	for id, c := range s.creatures {
		cloned.creatures[id] = domain.CloneCreature(c)
	}
	for owner, ids := range s.owned {
		cloned.owned[owner] = append([]domain.ID(nil), ids...)
	}
	return cloned
}

// Snapshot captures a point-in-time clone of the registry state for external
// persistence. Identifier map keys serialize as hex via their text encoding.
type Snapshot struct {
	Creatures map[domain.ID]domain.Creature    `json:"creatures"`
	Ownership map[domain.AccountID][]domain.ID `json:"ownership"`
	Count     uint64                           `json:"count"`
}

// Store is the in-memory transactional registry store.
type Store struct {
	mu       sync.RWMutex
	state    registryState
	engine   *domain.RulesEngine
	maxOwned uint32
	nowFn    func() time.Time
}

// NewStore constructs a store enforcing the given per-owner capacity. A zero
// capacity disables the bound. The rules engine is evaluated inside every
// transaction before commit.
func NewStore(engine *domain.RulesEngine, maxOwned uint32) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:    newRegistryState(),
		engine:   engine,
		maxOwned: maxOwned,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the transaction timestamp source, for tests.
func (s *Store) SetClock(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

// MaxOwned returns the configured per-owner capacity (0 means unbounded).
func (s *Store) MaxOwned() uint32 { return s.maxOwned }

type transaction struct {
	store   *Store
	state   registryState
	changes []domain.Change
	now     time.Time
}

type view struct {
	state *registryState
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The commit is all-or-nothing: any error from fn or a blocking rule
// violation discards the copy, leaving counter, table, and index untouched.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, &view{state: &tx.state}, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of committed state.
func (s *Store) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state.clone()
	return fn(&view{state: &snapshot})
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() domain.TransactionView {
	return &view{state: &tx.state}
}

// CreateCreature performs the full mint bookkeeping. Ordering matters: the
// counter overflow check comes first, then the capacity append, then the
// duplicate check and insert. All three live in the same transactional copy,
// so a failure at any step leaves nothing behind.
func (tx *transaction) CreateCreature(c domain.Creature) (domain.Creature, error) {
	if c.ID.IsZero() {
		return domain.Creature{}, errors.New("creature identifier required")
	}
	if c.Owner == "" {
		return domain.Creature{}, errors.New("creature owner required")
	}
	if tx.state.count == math.MaxUint64 {
		return domain.Creature{}, domain.ErrCounterOverflow
	}
	newCount := tx.state.count + 1

	seq := tx.state.owned[c.Owner]
	if tx.store.maxOwned > 0 && uint32(len(seq)) >= tx.store.maxOwned {
		return domain.Creature{}, domain.ErrExceedMaxOwned
	}

	if _, exists := tx.state.creatures[c.ID]; exists {
		return domain.Creature{}, domain.ErrDuplicateIdentifier{ID: c.ID}
	}

	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.owned[c.Owner] = append(seq, c.ID)
	tx.state.creatures[c.ID] = domain.CloneCreature(c)
	tx.state.count = newCount
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityCreature, Action: domain.ActionCreate, After: domain.CloneCreature(c)})
	return domain.CloneCreature(c), nil
}

// UpdateCreature mutates a creature in place. Identity-bearing fields are
// pinned: the mutator may change the price but not dna, gender, or owner.
func (tx *transaction) UpdateCreature(id domain.ID, mutator func(*domain.Creature) error) (domain.Creature, error) {
	current, ok := tx.state.creatures[id]
	if !ok {
		return domain.Creature{}, domain.ErrNotFound{ID: id}
	}
	before := domain.CloneCreature(current)
	if err := mutator(&current); err != nil {
		return domain.Creature{}, err
	}
	if current.DNA != before.DNA || current.Gender != before.Gender {
		return domain.Creature{}, errors.New("genetic data and gender are immutable")
	}
	if current.Owner != before.Owner {
		return domain.Creature{}, errors.New("owner changes go through TransferCreature")
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.creatures[id] = domain.CloneCreature(current)
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityCreature, Action: domain.ActionUpdate, Before: before, After: domain.CloneCreature(current)})
	return domain.CloneCreature(current), nil
}

// TransferCreature moves an identifier between owner sequences, enforcing the
// receiver's capacity and clearing the sale price.
func (tx *transaction) TransferCreature(id domain.ID, to domain.AccountID) (domain.Creature, error) {
	current, ok := tx.state.creatures[id]
	if !ok {
		return domain.Creature{}, domain.ErrNotFound{ID: id}
	}
	if to == "" {
		return domain.Creature{}, errors.New("transfer receiver required")
	}
	if to == current.Owner {
		return domain.Creature{}, domain.ErrTransferToSelf
	}

	receiver := tx.state.owned[to]
	if tx.store.maxOwned > 0 && uint32(len(receiver)) >= tx.store.maxOwned {
		return domain.Creature{}, domain.ErrExceedMaxOwned
	}

	before := domain.CloneCreature(current)
	from := current.Owner
	fromSeq := tx.state.owned[from]
	idx := -1
	for i, owned := range fromSeq {
		if owned == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Creature{}, fmt.Errorf("ownership index missing %s for %s", id, from)
	}
	tx.state.owned[from] = append(fromSeq[:idx], fromSeq[idx+1:]...)
	if len(tx.state.owned[from]) == 0 {
		delete(tx.state.owned, from)
	}
	tx.state.owned[to] = append(receiver, id)

	current.Owner = to
	current.Price = nil
	current.UpdatedAt = tx.now
	tx.state.creatures[id] = domain.CloneCreature(current)
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityOwnership, Action: domain.ActionTransfer, Before: before, After: domain.CloneCreature(current)})
	return domain.CloneCreature(current), nil
}

// FindCreature retrieves a creature by identifier from the snapshot.
func (v *view) FindCreature(id domain.ID) (domain.Creature, bool) {
	c, ok := v.state.creatures[id]
	if !ok {
		return domain.Creature{}, false
	}
	return domain.CloneCreature(c), true
}

// ListCreatures returns all creatures ordered by identifier.
func (v *view) ListCreatures() []domain.Creature {
	out := make([]domain.Creature, 0, len(v.state.creatures))
	for _, c := range v.state.creatures {
		out = append(out, domain.CloneCreature(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// OwnedBy returns the owner's identifier sequence in acquisition order.
func (v *view) OwnedBy(owner domain.AccountID) []domain.ID {
	return append([]domain.ID(nil), v.state.owned[owner]...)
}

// Owners returns all accounts with a non-empty sequence, sorted.
func (v *view) Owners() []domain.AccountID {
	out := make([]domain.AccountID, 0, len(v.state.owned))
	for owner := range v.state.owned {
		out = append(out, owner)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns the global creature counter.
func (v *view) Count() uint64 { return v.state.count }

// Read helpers over committed state --------------------------------------

// GetCreature retrieves a creature by identifier from committed state.
func (s *Store) GetCreature(id domain.ID) (domain.Creature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.creatures[id]
	if !ok {
		return domain.Creature{}, false
	}
	return domain.CloneCreature(c), true
}

// ListCreatures returns all creatures from committed state ordered by identifier.
func (s *Store) ListCreatures() []domain.Creature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&view{state: &s.state}).ListCreatures()
}

// OwnedBy returns the committed identifier sequence for an owner.
func (s *Store) OwnedBy(owner domain.AccountID) []domain.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ID(nil), s.state.owned[owner]...)
}

// Count returns the committed global counter.
func (s *Store) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.count
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Creatures: make(map[domain.ID]domain.Creature, len(s.state.creatures)),
		Ownership: make(map[domain.AccountID][]domain.ID, len(s.state.owned)),
		Count:     s.state.count,
	}
	for id, c := range s.state.creatures {
		snap.Creatures[id] = domain.CloneCreature(c)
	}
	for owner, ids := range s.state.owned {
		snap.Ownership[owner] = append([]domain.ID(nil), ids...)
	}
	return snap
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newRegistryState()
	state.count = snap.Count
	for id, c := range snap.Creatures {
		state.creatures[id] = domain.CloneCreature(c)
	}
	for owner, ids := range snap.Ownership {
		if len(ids) == 0 {
			continue
		}
		state.owned[owner] = append([]domain.ID(nil), ids...)
	}
	s.state = state
}
