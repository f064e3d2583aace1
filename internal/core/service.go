package core

import (
	"context"
	"time"

	"creaturecore/internal/genetics"
	"creaturecore/internal/identity"
	"creaturecore/internal/infra/persistence/memory"
	"creaturecore/pkg/domain"
)

// Service exposes the transactional creature lifecycle operations: minting,
// breeding, pricing, transfers, purchases, and queries. Every mutating
// operation runs inside a store transaction and either commits wholly or
// leaves no observable trace.
type Service struct {
	store    domain.PersistentStore
	genetics *genetics.Engine

	logger  Logger
	clock   func() time.Time
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	events  domain.EventSink
	caller  domain.CallerResolver
	ledger  domain.CurrencyLedger
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithLogger sets the structured logger. Nil restores the no-op logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l == nil {
			l = noopLogger{}
		}
		s.logger = l
	}
}

// WithClock overrides the time source used for durations and audit stamps.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetricsRecorder sets the per-operation metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer sets the span factory wrapped around each operation.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) { s.tracer = tracer }
}

// WithAuditRecorder sets the audit trail sink for mutating operations.
func WithAuditRecorder(rec AuditRecorder) ServiceOption {
	return func(s *Service) { s.audit = rec }
}

// WithEventSink sets the lifecycle event sink.
func WithEventSink(sink domain.EventSink) ServiceOption {
	return func(s *Service) {
		if sink == nil {
			sink = noopEventSink{}
		}
		s.events = sink
	}
}

// WithCallerResolver sets the resolver consulted when an operation receives
// an empty caller account.
func WithCallerResolver(resolver domain.CallerResolver) ServiceOption {
	return func(s *Service) { s.caller = resolver }
}

// WithLedger sets the currency ledger used to settle purchases.
func WithLedger(ledger domain.CurrencyLedger) ServiceOption {
	return func(s *Service) { s.ledger = ledger }
}

// NewService constructs a service over the supplied store and genetics
// engine.
func NewService(store domain.PersistentStore, engine *genetics.Engine, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		genetics: engine,
		logger:   noopLogger{},
		clock:    time.Now,
		events:   noopEventSink{},
		caller:   ContextCallerResolver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService constructs a service over a fresh in-memory store with
// the standard registry rules registered.
func NewInMemoryService(maxOwned uint32, rand domain.RandomnessSource, height domain.HeightOracle, opts ...ServiceOption) *Service {
	store := memory.NewStore(DefaultRulesEngine(maxOwned), maxOwned)
	return NewService(store, genetics.NewEngine(rand, height), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore { return s.store }

// resolveCaller returns the explicit account when given, otherwise consults
// the configured resolver. Fails with ErrUnauthenticated before any state is
// touched.
func (s *Service) resolveCaller(ctx context.Context, explicit domain.AccountID) (domain.AccountID, error) {
	if explicit != "" {
		return explicit, nil
	}
	if s.caller == nil {
		return "", domain.ErrUnauthenticated
	}
	return s.caller.Resolve(ctx)
}

// instrument opens a span and returns a completion callback that records
// metrics, audit, and logs for the operation.
func (s *Service) instrument(ctx context.Context, operation string) (context.Context, func(actor domain.AccountID, entityID string, err error)) {
	started := s.clock()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	return ctx, func(actor domain.AccountID, entityID string, err error) {
		duration := s.clock().Sub(started)
		if span != nil {
			span.End(err)
		}
		if s.metrics != nil {
			s.metrics.Observe(ctx, operation, err == nil, duration)
		}
		if s.audit != nil {
			entry := AuditEntry{
				Operation: operation,
				Status:    AuditStatusSuccess,
				Actor:     actor,
				EntityID:  entityID,
				At:        s.clock().UTC(),
			}
			if err != nil {
				entry.Status = AuditStatusError
				entry.Error = err.Error()
			}
			s.audit.Record(ctx, entry)
		}
		if err != nil {
			s.logger.Error(operation+" failed", "actor", string(actor), "entity", entityID, "error", err)
			return
		}
		s.logger.Debug(operation+" committed", "actor", string(actor), "entity", entityID, "duration", duration)
	}
}

// Mint creates a new creature for owner. Genetic data and gender default to
// freshly generated values when not supplied; the sale price starts unset.
func (s *Service) Mint(ctx context.Context, owner domain.AccountID, dna *domain.DNA, gender *domain.Gender) (domain.ID, error) {
	ctx, done := s.instrument(ctx, "mint")
	actor, err := s.resolveCaller(ctx, owner)
	if err != nil {
		done(owner, "", err)
		return domain.ID{}, err
	}
	id, err := s.mint(ctx, actor, dna, gender)
	done(actor, entityID(id, err), err)
	return id, err
}

// mint performs the shared mint path for Mint and Breed.
func (s *Service) mint(ctx context.Context, owner domain.AccountID, dna *domain.DNA, gender *domain.Gender) (domain.ID, error) {
	creature := domain.Creature{Owner: owner}
	if dna != nil {
		creature.DNA = *dna
	} else {
		creature.DNA = s.genetics.GenerateDNA()
	}
	if gender != nil {
		creature.Gender = *gender
	} else {
		creature.Gender = s.genetics.GenerateGender()
	}
	creature.ID = identity.Derive(creature)

	if _, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateCreature(creature)
		return err
	}); err != nil {
		return domain.ID{}, err
	}
	s.events.Notify(domain.CreatedEvent{Owner: owner, Creature: creature.ID})
	return creature.ID, nil
}

// Breed combines two existing creatures' genetic data into a new creature
// owned by owner. Offspring gender is freshly randomized, not inherited.
func (s *Service) Breed(ctx context.Context, owner domain.AccountID, parent1, parent2 domain.ID) (domain.ID, error) {
	ctx, done := s.instrument(ctx, "breed")
	actor, err := s.resolveCaller(ctx, owner)
	if err != nil {
		done(owner, "", err)
		return domain.ID{}, err
	}

	var child domain.Creature
	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		childDNA, err := s.genetics.Combine(tx.Snapshot(), parent1, parent2)
		if err != nil {
			return err
		}
		child = domain.Creature{DNA: childDNA, Gender: s.genetics.GenerateGender(), Owner: actor}
		child.ID = identity.Derive(child)
		_, err = tx.CreateCreature(child)
		return err
	})
	if err != nil {
		done(actor, "", err)
		return domain.ID{}, err
	}
	s.events.Notify(domain.CreatedEvent{Owner: actor, Creature: child.ID})
	done(actor, child.ID.String(), nil)
	return child.ID, nil
}

// SetPrice puts a creature up for sale at price, or takes it off the market
// when price is nil. The caller must own the creature.
func (s *Service) SetPrice(ctx context.Context, caller domain.AccountID, id domain.ID, price *uint64) error {
	ctx, done := s.instrument(ctx, "set_price")
	actor, err := s.resolveCaller(ctx, caller)
	if err != nil {
		done(caller, id.String(), err)
		return err
	}
	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateCreature(id, func(c *domain.Creature) error {
			if c.Owner != actor {
				return domain.ErrNotOwner
			}
			if price == nil {
				c.Price = nil
				return nil
			}
			p := *price
			c.Price = &p
			return nil
		})
		return err
	})
	done(actor, id.String(), err)
	if err != nil {
		return err
	}
	s.events.Notify(domain.PriceSetEvent{Owner: actor, Creature: id, Price: price})
	return nil
}

// Transfer reassigns ownership of a creature the caller owns. The sale price
// does not survive the owner change.
func (s *Service) Transfer(ctx context.Context, caller, to domain.AccountID, id domain.ID) error {
	ctx, done := s.instrument(ctx, "transfer")
	actor, err := s.resolveCaller(ctx, caller)
	if err != nil {
		done(caller, id.String(), err)
		return err
	}
	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := tx.Snapshot().FindCreature(id)
		if !ok {
			return domain.ErrNotFound{ID: id}
		}
		if current.Owner != actor {
			return domain.ErrNotOwner
		}
		_, err := tx.TransferCreature(id, to)
		return err
	})
	done(actor, id.String(), err)
	if err != nil {
		return err
	}
	s.events.Notify(domain.TransferredEvent{From: actor, To: to, Creature: id})
	return nil
}

// Buy purchases a creature listed for sale, paying the bid through the
// configured ledger. The bid must meet or exceed the asking price; the seller
// receives the full bid. The registry transfer commits first and the ledger
// settles afterwards; a failed settlement is compensated by returning the
// creature and its listing, so neither side observes a partial purchase.
func (s *Service) Buy(ctx context.Context, buyer domain.AccountID, id domain.ID, bid uint64) error {
	ctx, done := s.instrument(ctx, "buy")
	actor, err := s.resolveCaller(ctx, buyer)
	if err != nil {
		done(buyer, id.String(), err)
		return err
	}
	if s.ledger == nil {
		done(actor, id.String(), domain.ErrNoLedger)
		return domain.ErrNoLedger
	}

	var (
		seller domain.AccountID
		asking uint64
	)
	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := tx.Snapshot().FindCreature(id)
		if !ok {
			return domain.ErrNotFound{ID: id}
		}
		if current.Owner == actor {
			return domain.ErrBuyerIsOwner
		}
		if current.Price == nil {
			return domain.ErrNotForSale
		}
		if bid < *current.Price {
			return domain.ErrBidPriceTooLow
		}
		seller = current.Owner
		asking = *current.Price
		_, err := tx.TransferCreature(id, actor)
		return err
	})
	if err != nil {
		done(actor, id.String(), err)
		return err
	}

	if err := s.ledger.Transfer(actor, seller, bid); err != nil {
		if _, rbErr := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if _, err := tx.TransferCreature(id, seller); err != nil {
				return err
			}
			_, err := tx.UpdateCreature(id, func(c *domain.Creature) error {
				price := asking
				c.Price = &price
				return nil
			})
			return err
		}); rbErr != nil {
			s.logger.Error("buy settlement rollback failed", "creature", id.String(), "error", rbErr)
		}
		done(actor, id.String(), err)
		return err
	}
	done(actor, id.String(), nil)
	s.events.Notify(domain.BoughtEvent{Buyer: actor, Seller: seller, Creature: id, Price: bid})
	return nil
}

// IsOwner reports whether account owns the creature. Fails with ErrNotFound
// when the creature does not exist.
func (s *Service) IsOwner(ctx context.Context, id domain.ID, account domain.AccountID) (bool, error) {
	c, ok := s.store.GetCreature(id)
	if !ok {
		return false, domain.ErrNotFound{ID: id}
	}
	return c.Owner == account, nil
}

// GetCreature returns the creature by identifier.
func (s *Service) GetCreature(ctx context.Context, id domain.ID) (domain.Creature, error) {
	c, ok := s.store.GetCreature(id)
	if !ok {
		return domain.Creature{}, domain.ErrNotFound{ID: id}
	}
	return c, nil
}

// OwnedBy returns the identifiers held by owner in acquisition order.
func (s *Service) OwnedBy(ctx context.Context, owner domain.AccountID) []domain.ID {
	return s.store.OwnedBy(owner)
}

// Count returns the number of creatures ever created.
func (s *Service) Count(ctx context.Context) uint64 {
	return s.store.Count()
}

func entityID(id domain.ID, err error) string {
	if err != nil {
		return ""
	}
	return id.String()
}
