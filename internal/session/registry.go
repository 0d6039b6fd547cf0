// Package session keeps one cart and checkout flow per browser session.
package session

import (
	"context"
	"sync"
	"time"

	"premi-cart/internal/cart"
	"premi-cart/internal/model"
	"premi-cart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session is the state owned by one browser session.
type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout service.CheckoutService

	lastSeen time.Time
}

// Factory builds the checkout service for a new session's cart.
type Factory func(store *cart.Store, logger zerolog.Logger) service.CheckoutService

// Registry holds live sessions and expires idle ones.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	factory  Factory
	now      func() time.Time
	logger   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(ttl time.Duration, factory Factory, logger zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
		logger:   logger.With().Str("component", "sessions").Logger(),
	}
}

// Get returns the session with the given id and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || r.expired(s) {
		return nil, model.ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s, nil
}

// Create starts a new session with an empty cart.
func (r *Registry) Create() *Session {
	id := uuid.NewString()
	logger := r.logger.With().Str("session_id", id).Logger()

	store := cart.New(cart.WithLogger(logger))
	store.Subscribe(func(snap model.CartSnapshot) {
		logger.Debug().
			Int("item_count", len(snap.Items)).
			Int("count", snap.Count).
			Int("total", snap.Totals.Total).
			Msg("cart changed")
	})

	s := &Session{
		ID:       id,
		Cart:     store,
		Checkout: r.factory(store, logger),
		lastSeen: r.now(),
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	logger.Debug().Msg("session created")
	return s
}

// GetOrCreate returns the session for id, creating a new one when id is
// empty, unknown or expired. The second result reports whether a new
// session was created.
func (r *Registry) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, err := r.Get(id); err == nil {
			return s, false
		}
	}
	return r.Create(), true
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if r.expired(s) {
			delete(r.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		r.logger.Info().
			Int("removed", removed).
			Int("remaining", len(r.sessions)).
			Msg("expired sessions removed")
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// expired reports whether s has been idle longer than the TTL. An
// in-flight checkout keeps the session alive.
func (r *Registry) expired(s *Session) bool {
	if s.Checkout != nil && s.Checkout.State() == model.CheckoutAwaitingSubmission {
		return false
	}
	return r.now().Sub(s.lastSeen) > r.ttl
}

type contextKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
