// Package cart holds the in-memory shopping cart of one browser session.
package cart

import (
	"sync"

	"premi-cart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Listener receives the cart state after every mutation.
type Listener func(model.CartSnapshot)

// Store is the ordered line-item list of a session. The pair (name, size)
// is unique and no entry ever holds a quantity below 1. While held for an
// order submission every mutation fails with model.ErrSubmissionInFlight.
type Store struct {
	mu        sync.Mutex
	items     []model.LineItem
	held      bool
	listeners map[int]Listener
	nextSub   int
	newID     func() uuid.UUID
	logger    zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutation events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.With().Str("component", "cart").Logger()
	}
}

// WithIDGenerator overrides how line-item ids are generated.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// New creates an empty cart.
func New(opts ...Option) *Store {
	s := &Store{
		listeners: make(map[int]Listener),
		newID:     uuid.New,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// AddItem increments the quantity of the matching (name, size) entry or
// appends a new entry with quantity 1.
func (s *Store) AddItem(name string, unitPrice int, size, image string) (model.LineItem, error) {
	s.mu.Lock()
	if s.held {
		s.mu.Unlock()
		return model.LineItem{}, model.ErrSubmissionInFlight
	}

	var added model.LineItem
	if idx := s.indexOfVariant(name, size); idx >= 0 {
		s.items[idx].Quantity++
		added = s.items[idx]
	} else {
		added = model.LineItem{
			ID:        s.newID(),
			Name:      name,
			Size:      size,
			UnitPrice: unitPrice,
			Quantity:  1,
			Image:     image,
		}
		s.items = append(s.items, added)
	}

	s.logger.Debug().
		Str("item_id", added.ID.String()).
		Str("name", name).
		Str("size", size).
		Int("quantity", added.Quantity).
		Msg("item added to cart")

	s.unlockAndNotify()
	return added, nil
}

// Increment raises the quantity of the item by one.
func (s *Store) Increment(id uuid.UUID) error {
	s.mu.Lock()
	if s.held {
		s.mu.Unlock()
		return model.ErrSubmissionInFlight
	}

	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.ErrItemNotFound
	}
	s.items[idx].Quantity++

	s.unlockAndNotify()
	return nil
}

// Decrement lowers the quantity of the item by one, removing it when the
// quantity would reach zero.
func (s *Store) Decrement(id uuid.UUID) error {
	s.mu.Lock()
	if s.held {
		s.mu.Unlock()
		return model.ErrSubmissionInFlight
	}

	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.ErrItemNotFound
	}
	if s.items[idx].Quantity > 1 {
		s.items[idx].Quantity--
	} else {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}

	s.unlockAndNotify()
	return nil
}

// Remove deletes the item. Unknown ids are ignored.
func (s *Store) Remove(id uuid.UUID) error {
	s.mu.Lock()
	if s.held {
		s.mu.Unlock()
		return model.ErrSubmissionInFlight
	}

	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	s.unlockAndNotify()
	return nil
}

// Clear empties the cart.
func (s *Store) Clear() error {
	s.mu.Lock()
	if s.held {
		s.mu.Unlock()
		return model.ErrSubmissionInFlight
	}
	s.items = nil
	s.logger.Debug().Msg("cart cleared")
	s.unlockAndNotify()
	return nil
}

// Hold freezes the cart for an order submission and returns the snapshot
// being ordered. A second Hold fails until Release is called.
func (s *Store) Hold() (model.CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held {
		return model.CartSnapshot{}, model.ErrSubmissionInFlight
	}
	s.held = true
	return s.snapshot(), nil
}

// Release unfreezes the cart. With empty set the held items are dropped in
// the same step, so nothing added later can be lost.
func (s *Store) Release(empty bool) {
	s.mu.Lock()
	s.held = false
	if !empty {
		s.mu.Unlock()
		return
	}
	s.items = nil
	s.logger.Debug().Msg("cart cleared after order")
	s.unlockAndNotify()
}

// Held reports whether a submission currently holds the cart.
func (s *Store) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Items returns a copy of the line items in display order.
func (s *Store) Items() []model.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

// Totals recomputes subtotal, tax and total from the current items.
func (s *Store) Totals() model.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ComputeTotals(s.items)
}

// Count returns the number of units across all items.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count()
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// IsEmpty reports whether the cart holds no items.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Snapshot returns items, count and totals taken under one lock.
func (s *Store) Snapshot() model.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() model.CartSnapshot {
	return model.CartSnapshot{
		Items:  s.copyItems(),
		Count:  s.count(),
		Totals: model.ComputeTotals(s.items),
	}
}

// unlockAndNotify releases the lock before calling listeners so they may
// read the store.
func (s *Store) unlockAndNotify() {
	snap := s.snapshot()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) copyItems() []model.LineItem {
	out := make([]model.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) count() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfVariant(name, size string) int {
	for i, it := range s.items {
		if it.Name == name && it.Size == size {
			return i
		}
	}
	return -1
}
