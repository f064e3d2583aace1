package core

import (
	"context"
	"errors"
	"testing"

	"creaturecore/internal/genetics"
	"creaturecore/internal/infra/currency"
	"creaturecore/internal/infra/persistence/memory"
	"creaturecore/internal/infra/random"
	"creaturecore/pkg/domain"
)

func uint64Ptr(v uint64) *uint64 { return &v }

func TestSetPriceRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, 0)

	id, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := svc.SetPrice(ctx, "bob", id, uint64Ptr(100)); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("err = %v", err)
	}
	c, _ := svc.GetCreature(ctx, id)
	if c.ForSale() {
		t.Fatal("rejected set-price listed the creature")
	}
}

func TestSetPriceListsAndDelists(t *testing.T) {
	ctx := context.Background()
	sink := NewRecordingEventSink()
	svc := newTestService(t, 0, WithEventSink(sink))

	id, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := svc.SetPrice(ctx, "alice", id, uint64Ptr(250)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	c, _ := svc.GetCreature(ctx, id)
	if !c.ForSale() || *c.Price != 250 {
		t.Fatalf("price = %v", c.Price)
	}

	if err := svc.SetPrice(ctx, "alice", id, nil); err != nil {
		t.Fatalf("clear price: %v", err)
	}
	c, _ = svc.GetCreature(ctx, id)
	if c.ForSale() {
		t.Fatal("creature still listed")
	}

	events := sink.Events()
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	priceSet, ok := events[1].(domain.PriceSetEvent)
	if !ok || priceSet.Creature != id || priceSet.Price == nil || *priceSet.Price != 250 {
		t.Fatalf("unexpected price event: %+v", events[1])
	}
	cleared, ok := events[2].(domain.PriceSetEvent)
	if !ok || cleared.Price != nil {
		t.Fatalf("unexpected delist event: %+v", events[2])
	}
}

func TestSetPriceMissingCreature(t *testing.T) {
	svc := newTestService(t, 0)
	var notFound domain.ErrNotFound
	if err := svc.SetPrice(context.Background(), "alice", domain.ID{1}, uint64Ptr(5)); !errors.As(err, &notFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestTransferSemantics(t *testing.T) {
	ctx := context.Background()
	sink := NewRecordingEventSink()
	svc := newTestService(t, 0, WithEventSink(sink))

	id, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := svc.SetPrice(ctx, "alice", id, uint64Ptr(10)); err != nil {
		t.Fatalf("set price: %v", err)
	}

	if err := svc.Transfer(ctx, "bob", "carol", id); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("foreign transfer err = %v", err)
	}
	if err := svc.Transfer(ctx, "alice", "alice", id); !errors.Is(err, domain.ErrTransferToSelf) {
		t.Fatalf("self transfer err = %v", err)
	}

	if err := svc.Transfer(ctx, "alice", "bob", id); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	c, _ := svc.GetCreature(ctx, id)
	if c.Owner != "bob" {
		t.Fatalf("owner = %s", c.Owner)
	}
	if c.ForSale() {
		t.Fatal("price survived the owner change")
	}
	if owned := svc.OwnedBy(ctx, "alice"); len(owned) != 0 {
		t.Fatalf("sender index not cleared: %v", owned)
	}
	if owned := svc.OwnedBy(ctx, "bob"); len(owned) != 1 || owned[0] != id {
		t.Fatalf("receiver index = %v", owned)
	}

	last := sink.Events()[len(sink.Events())-1]
	transferred, ok := last.(domain.TransferredEvent)
	if !ok || transferred.From != "alice" || transferred.To != "bob" || transferred.Creature != id {
		t.Fatalf("unexpected transfer event: %+v", last)
	}
}

func TestTransferReceiverCapacity(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, 1)

	a, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := svc.Mint(ctx, "bob", nil, nil); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := svc.Transfer(ctx, "alice", "bob", a); !errors.Is(err, domain.ErrExceedMaxOwned) {
		t.Fatalf("err = %v", err)
	}
	c, _ := svc.GetCreature(ctx, a)
	if c.Owner != "alice" {
		t.Fatal("failed transfer moved the creature")
	}
}

func TestBuyGuards(t *testing.T) {
	ctx := context.Background()
	ledger := currency.NewLedger()
	svc := newTestService(t, 0, WithLedger(ledger))

	id, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := svc.Buy(ctx, "bob", id, 100); !errors.Is(err, domain.ErrNotForSale) {
		t.Fatalf("unlisted err = %v", err)
	}
	if err := svc.SetPrice(ctx, "alice", id, uint64Ptr(100)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	if err := svc.Buy(ctx, "alice", id, 100); !errors.Is(err, domain.ErrBuyerIsOwner) {
		t.Fatalf("self purchase err = %v", err)
	}
	if err := svc.Buy(ctx, "bob", id, 99); !errors.Is(err, domain.ErrBidPriceTooLow) {
		t.Fatalf("low bid err = %v", err)
	}

	ledger.Deposit("bob", 50)
	if err := svc.Buy(ctx, "bob", id, 100); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("poor buyer err = %v", err)
	}
	// The aborted purchase must leave both the registry and the ledger alone.
	c, _ := svc.GetCreature(ctx, id)
	if c.Owner != "alice" || !c.ForSale() {
		t.Fatalf("aborted buy mutated the creature: %+v", c)
	}
	if ledger.Balance("bob") != 50 || ledger.Balance("alice") != 0 {
		t.Fatal("aborted buy moved funds")
	}

	var notFound domain.ErrNotFound
	if err := svc.Buy(ctx, "bob", domain.ID{9}, 1); !errors.As(err, &notFound) {
		t.Fatalf("missing creature err = %v", err)
	}
}

func TestBuyCompletesSale(t *testing.T) {
	ctx := context.Background()
	ledger := currency.NewLedger()
	sink := NewRecordingEventSink()
	svc := newTestService(t, 0, WithLedger(ledger), WithEventSink(sink))

	id, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := svc.SetPrice(ctx, "alice", id, uint64Ptr(100)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	ledger.Deposit("bob", 150)

	if err := svc.Buy(ctx, "bob", id, 120); err != nil {
		t.Fatalf("buy: %v", err)
	}
	c, _ := svc.GetCreature(ctx, id)
	if c.Owner != "bob" {
		t.Fatalf("owner = %s", c.Owner)
	}
	if c.ForSale() {
		t.Fatal("sold creature still listed")
	}
	if ledger.Balance("bob") != 30 || ledger.Balance("alice") != 120 {
		t.Fatalf("balances = %d, %d", ledger.Balance("bob"), ledger.Balance("alice"))
	}

	last := sink.Events()[len(sink.Events())-1]
	bought, ok := last.(domain.BoughtEvent)
	if !ok || bought.Buyer != "bob" || bought.Seller != "alice" || bought.Price != 120 {
		t.Fatalf("unexpected bought event: %+v", last)
	}
}

func TestBuyWithoutLedger(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, 0)
	id, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := svc.SetPrice(ctx, "alice", id, uint64Ptr(1)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	if err := svc.Buy(ctx, "bob", id, 1); !errors.Is(err, domain.ErrNoLedger) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuyBlockedByRulesLeavesFundsUntouched(t *testing.T) {
	ctx := context.Background()
	ledger := currency.NewLedger()
	// Rule cap of one per owner while the store itself is unbounded: the
	// purchase passes the transfer bookkeeping and is only rejected by the
	// rules engine at commit time.
	store := memory.NewStore(DefaultRulesEngine(1), 0)
	svc := NewService(store, genetics.NewEngine(random.NewDeterministic(1), random.FixedHeight(7)), WithLedger(ledger))

	id, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := svc.Mint(ctx, "bob", nil, nil); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := svc.SetPrice(ctx, "alice", id, uint64Ptr(10)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	ledger.Deposit("bob", 10)

	var violation domain.RuleViolationError
	if err := svc.Buy(ctx, "bob", id, 10); !errors.As(err, &violation) {
		t.Fatalf("err = %v", err)
	}
	c, _ := svc.GetCreature(ctx, id)
	if c.Owner != "alice" {
		t.Fatalf("owner = %s", c.Owner)
	}
	if !c.ForSale() || *c.Price != 10 {
		t.Fatalf("blocked buy changed the listing: %+v", c.Price)
	}
	if ledger.Balance("bob") != 10 || ledger.Balance("alice") != 0 {
		t.Fatalf("blocked buy moved funds: bob=%d alice=%d", ledger.Balance("bob"), ledger.Balance("alice"))
	}
}

func TestBuySettlementFailureRestoresListing(t *testing.T) {
	ctx := context.Background()
	ledger := currency.NewLedger()
	sink := NewRecordingEventSink()
	svc := newTestService(t, 0, WithLedger(ledger), WithEventSink(sink))

	id, err := svc.Mint(ctx, "alice", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := svc.SetPrice(ctx, "alice", id, uint64Ptr(100)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	ledger.Deposit("bob", 40)

	if err := svc.Buy(ctx, "bob", id, 100); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v", err)
	}
	c, _ := svc.GetCreature(ctx, id)
	if c.Owner != "alice" {
		t.Fatalf("owner = %s", c.Owner)
	}
	if !c.ForSale() || *c.Price != 100 {
		t.Fatalf("failed settlement lost the listing: %+v", c.Price)
	}
	if owned := svc.OwnedBy(ctx, "bob"); len(owned) != 0 {
		t.Fatalf("buyer index not restored: %v", owned)
	}
	for _, ev := range sink.Events() {
		if _, ok := ev.(domain.BoughtEvent); ok {
			t.Fatal("failed purchase emitted a bought event")
		}
	}

	// The listing survives, so a funded retry still goes through.
	ledger.Deposit("bob", 60)
	if err := svc.Buy(ctx, "bob", id, 100); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if ledger.Balance("alice") != 100 {
		t.Fatalf("alice balance = %d", ledger.Balance("alice"))
	}
}
