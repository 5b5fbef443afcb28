// Package cartstore is the client-side cart. It shows mutations before the
// server confirms them and drops them again if the server refuses.
//
// The visible cart is the last cart the server returned with every pending
// mutation applied on top, in submission order. Mutations are sent one at a
// time in that same order, so each reply already contains every earlier
// mutation.
package cartstore

import (
	"context"
	"log/slog"
	"sync"

	"pedeai/entity"
	"pedeai/pkg/taskqueue"

	"github.com/shopspring/decimal"
)

// Backend is the authoritative cart. Every call returns the full cart after
// the operation.
type Backend interface {
	Cart(ctx context.Context) (*entity.Cart, error)
	AddItem(ctx context.Context, line entity.CartLine) (*entity.Cart, error)
	UpdateQuantity(ctx context.Context, productID uint, quantity int) (*entity.Cart, error)
	RemoveItem(ctx context.Context, productID uint) (*entity.Cart, error)
	ClearCart(ctx context.Context) (*entity.Cart, error)
}

type State int

const (
	Pending State = iota
	Confirmed
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Mutation is one cart operation on its way to the backend.
type Mutation struct {
	ID    uint64
	Op    string
	State State
	Err   error

	apply func(*entity.Cart) error
}

type Store struct {
	backend Backend
	queue   *taskqueue.Queue
	log     *slog.Logger

	// deliver orders observer calls; taken before mu, never after it
	deliver sync.Mutex

	mu        sync.Mutex
	base      *entity.Cart
	pending   []*Mutation
	nextID    uint64
	observers []func(Mutation)
}

func New(b Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: b,
		queue:   taskqueue.New(),
		log:     logger.With("component", "cartstore"),
		base:    &entity.Cart{},
	}
}

// Observe registers fn to be called on every state change of every
// mutation. A mutation's Pending call always comes before its settled one.
// fn runs without the store lock held but must not mutate the store.
func (s *Store) Observe(fn func(Mutation)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Cart returns a copy of the visible cart.
func (s *Store) Cart() *entity.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Total is recomputed from the visible cart on every call.
func (s *Store) Total() decimal.Decimal {
	return s.Cart().Total()
}

// Confirmed returns a copy of the last cart the backend returned.
func (s *Store) Confirmed() *entity.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base.Clone()
}

func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Add merges line into the cart. A line from another restaurant fails
// locally with a cross-restaurant conflict and is never sent.
func (s *Store) Add(ctx context.Context, line entity.CartLine) error {
	return s.submit(ctx, "add",
		func(c *entity.Cart) error { return c.Add(line) },
		func(ctx context.Context) (*entity.Cart, error) { return s.backend.AddItem(ctx, line) },
	)
}

// UpdateQuantity sets an absolute quantity; zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID uint, quantity int) error {
	return s.submit(ctx, "update",
		func(c *entity.Cart) error { return c.SetQuantity(productID, quantity) },
		func(ctx context.Context) (*entity.Cart, error) {
			return s.backend.UpdateQuantity(ctx, productID, quantity)
		},
	)
}

func (s *Store) Remove(ctx context.Context, productID uint) error {
	return s.submit(ctx, "remove",
		func(c *entity.Cart) error { c.Remove(productID); return nil },
		func(ctx context.Context) (*entity.Cart, error) { return s.backend.RemoveItem(ctx, productID) },
	)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.submit(ctx, "clear",
		func(c *entity.Cart) error { c.Clear(); return nil },
		s.backend.ClearCart,
	)
}

// Refresh replaces the confirmed cart with the backend's current one. It
// runs after every mutation already submitted.
func (s *Store) Refresh(ctx context.Context) error {
	taskCtx := context.WithoutCancel(ctx)
	return s.queue.Do(ctx, func() error {
		c, err := s.backend.Cart(taskCtx)
		if err != nil {
			s.log.WarnContext(taskCtx, "refresh cart", "err", err)
			return err
		}
		s.mu.Lock()
		s.base = c
		s.mu.Unlock()
		return nil
	})
}

// Reset adopts an empty cart as the confirmed state without a backend
// call, for when the server has already emptied it, as checkout does.
// Mutations still pending stay applied on top.
func (s *Store) Reset() {
	s.mu.Lock()
	s.base = &entity.Cart{UserID: s.base.UserID}
	s.mu.Unlock()
}

// Wait blocks until every mutation submitted so far has settled.
func (s *Store) Wait(ctx context.Context) error {
	return s.queue.Wait(ctx)
}

// submit applies the mutation locally, then sends it behind every earlier
// one. If ctx ends first the caller gets ctx.Err() and the mutation still
// settles in the background.
func (s *Store) submit(ctx context.Context, op string, apply func(*entity.Cart) error, send func(context.Context) (*entity.Cart, error)) error {
	s.deliver.Lock()
	s.mu.Lock()
	if err := apply(s.viewLocked()); err != nil {
		s.mu.Unlock()
		s.deliver.Unlock()
		return err
	}
	s.nextID++
	m := &Mutation{ID: s.nextID, Op: op, State: Pending, apply: apply}
	s.pending = append(s.pending, m)

	taskCtx := context.WithoutCancel(ctx)
	result := s.queue.Enqueue(func() error {
		c, err := send(taskCtx)
		s.settle(taskCtx, m, c, err)
		return err
	})
	snap, observers := *m, s.observers
	s.mu.Unlock()
	emit(observers, snap)
	s.deliver.Unlock()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) settle(ctx context.Context, m *Mutation, c *entity.Cart, err error) {
	s.mu.Lock()
	for i, p := range s.pending {
		if p == m {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	if err != nil {
		m.State, m.Err = Failed, err
		s.log.WarnContext(ctx, "cart mutation rolled back", "op", m.Op, "id", m.ID, "err", err)
	} else {
		m.State = Confirmed
		s.base = c
	}
	snap, observers := *m, s.observers
	s.mu.Unlock()

	s.deliver.Lock()
	emit(observers, snap)
	s.deliver.Unlock()
}

// viewLocked rebuilds the visible cart. A pending mutation that no longer
// applies to the new base is left out of the view until it settles.
func (s *Store) viewLocked() *entity.Cart {
	c := s.base.Clone()
	for _, m := range s.pending {
		work := c.Clone()
		if err := m.apply(work); err == nil {
			c = work
		}
	}
	return c
}

func emit(observers []func(Mutation), m Mutation) {
	for _, fn := range observers {
		fn(m)
	}
}
