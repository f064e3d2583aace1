package domain

import "context"

// RandomOutputLength is the size of a randomness draw in bytes.
const RandomOutputLength = 32

// RandomOutput is a single 256-bit draw from a randomness source.
type RandomOutput [RandomOutputLength]byte

// RandomnessSource supplies domain-separated randomness. The tag distinguishes
// draw purposes ("dna" vs "gender"); the second return value is a generation
// marker identifying the entropy round the output was produced in. Outputs
// must be treated as adversarially influenced but are usable for identifier
// and gender derivation.
type RandomnessSource interface {
	Random(tag []byte) (RandomOutput, uint64)
}

// HeightOracle reports the current monotonically increasing block or sequence
// number, mixed into DNA generation for additional entropy.
type HeightOracle interface {
	Height() uint64
}

// CallerResolver validates a transaction context and returns the acting
// account, or ErrUnauthenticated when no identity can be established.
type CallerResolver interface {
	Resolve(ctx context.Context) (AccountID, error)
}

// CurrencyLedger is the balance transfer primitive used by purchases.
// Implementations return ErrInsufficientBalance when the payer cannot cover
// the amount.
type CurrencyLedger interface {
	Transfer(from, to AccountID, amount uint64) error
}

// EventKind names a lifecycle occurrence.
type EventKind string

// Lifecycle event kinds.
const (
	EventCreated     EventKind = "created"
	EventPriceSet    EventKind = "price_set"
	EventTransferred EventKind = "transferred"
	EventBought      EventKind = "bought"
)

// Event is a fire-and-forget notification of a lifecycle occurrence.
type Event interface {
	Kind() EventKind
}

// CreatedEvent reports a successful mint or breed.
type CreatedEvent struct {
	Owner    AccountID `json:"owner"`
	Creature ID        `json:"creature"`
}

// Kind implements Event.
func (CreatedEvent) Kind() EventKind { return EventCreated }

// PriceSetEvent reports a sale price change. A nil price takes the creature
// off the market.
type PriceSetEvent struct {
	Owner    AccountID `json:"owner"`
	Creature ID        `json:"creature"`
	Price    *uint64   `json:"price,omitempty"`
}

// Kind implements Event.
func (PriceSetEvent) Kind() EventKind { return EventPriceSet }

// TransferredEvent reports an ownership change.
type TransferredEvent struct {
	From     AccountID `json:"from"`
	To       AccountID `json:"to"`
	Creature ID        `json:"creature"`
}

// Kind implements Event.
func (TransferredEvent) Kind() EventKind { return EventTransferred }

// BoughtEvent reports a completed purchase.
type BoughtEvent struct {
	Buyer    AccountID `json:"buyer"`
	Seller   AccountID `json:"seller"`
	Creature ID        `json:"creature"`
	Price    uint64    `json:"price"`
}

// Kind implements Event.
func (BoughtEvent) Kind() EventKind { return EventBought }

// EventSink receives lifecycle events. Delivery is best-effort; sinks must not
// influence operation outcomes.
type EventSink interface {
	Notify(Event)
}
