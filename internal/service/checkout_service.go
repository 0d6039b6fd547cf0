package service

import (
	"context"
	"errors"
	"sync"

	"premi-cart/internal/cart"
	"premi-cart/internal/message"
	"premi-cart/internal/model"

	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService for a single session.
type checkoutService struct {
	cart          *cart.Store
	orders        OrderSubmitter
	profiles      ProfileLookup
	formatter     *message.Formatter
	whatsAppPhone string
	logger        zerolog.Logger

	mu      sync.Mutex
	state   model.CheckoutState
	extras  model.OrderExtras
	profile *model.Profile
}

// CheckoutOptions holds the collaborators of a checkout service.
type CheckoutOptions struct {
	// Profiles may be nil, in which case checkout never prefills.
	Profiles ProfileLookup

	// Formatter defaults to message.NewFormatter().
	Formatter *message.Formatter

	// WhatsAppPhone is the number orders are handed off to.
	WhatsAppPhone string
}

// NewCheckoutService creates a checkout service bound to the given cart.
func NewCheckoutService(
	store *cart.Store,
	orders OrderSubmitter,
	opts CheckoutOptions,
	logger zerolog.Logger,
) CheckoutService {
	formatter := opts.Formatter
	if formatter == nil {
		formatter = message.NewFormatter()
	}

	return &checkoutService{
		cart:          store,
		orders:        orders,
		profiles:      opts.Profiles,
		formatter:     formatter,
		whatsAppPhone: opts.WhatsAppPhone,
		logger:        logger.With().Str("service", "checkout").Logger(),
		state:         model.CheckoutIdle,
	}
}

// Open snapshots the cart for review and prefills customer details.
// The cart must not be empty.
func (s *checkoutService) Open(ctx context.Context) (*model.CheckoutReview, error) {
	s.mu.Lock()
	if !s.state.CanOpen() {
		s.mu.Unlock()
		return nil, model.ErrSubmissionInFlight
	}
	s.mu.Unlock()

	if s.cart.IsEmpty() {
		s.logger.Debug().Msg("checkout refused for empty cart")
		return nil, model.ErrEmptyCart
	}

	profile, looked := s.prefetchProfile(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A submission may have started while the profile was being fetched.
	if !s.state.CanOpen() {
		return nil, model.ErrSubmissionInFlight
	}

	// A failed lookup keeps the last known profile; a guest answer means
	// the customer logged out.
	if looked {
		s.profile = profile
	}
	if profile != nil && s.extras.Address == "" {
		s.extras.Address = profile.Address
	}

	from := s.state
	s.state = model.CheckoutReviewingCart
	snapshot := s.cart.Snapshot()

	s.logger.Debug().
		Str("from", from.String()).
		Int("item_count", len(snapshot.Items)).
		Int("total", snapshot.Totals.Total).
		Bool("has_profile", s.profile != nil).
		Msg("checkout opened")

	return &model.CheckoutReview{
		State:    s.state,
		Cart:     snapshot,
		Extras:   s.extras,
		Customer: model.ResolveCustomer(s.profile, s.extras),
	}, nil
}

// prefetchProfile looks up the logged-in customer. Errors are never
// surfaced; the second result reports whether the lookup answered.
func (s *checkoutService) prefetchProfile(ctx context.Context) (*model.Profile, bool) {
	if s.profiles == nil {
		return nil, false
	}

	profile, err := s.profiles.LookupProfile(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("profile prefetch failed, keeping last known profile")
		return nil, false
	}
	return profile, true
}

// SetExtras records the address, notes and guest contact details.
func (s *checkoutService) SetExtras(extras model.OrderExtras) model.OrderExtras {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.extras = extras.Normalised()
	return s.extras
}

// Preview renders the WhatsApp message as it would be sent now.
func (s *checkoutService) Preview() string {
	s.mu.Lock()
	extras := s.extras
	customer := model.ResolveCustomer(s.profile, s.extras)
	s.mu.Unlock()

	order := message.NewOrder(s.cart.Snapshot(), extras, customer, "")
	return s.formatter.Preview(order)
}

// Submit places the order on the given channel.
//
// On the WhatsApp channel a receipt carrying the message and link is
// returned even when the order service fails; the error is returned
// alongside it. On the direct channel a failure returns only the error.
// The cart refuses changes while the order is in flight and is cleared
// only when the order service accepts the order.
func (s *checkoutService) Submit(ctx context.Context, channel model.Channel) (*model.Receipt, error) {
	if channel != model.ChannelWhatsApp && channel != model.ChannelDirect {
		return nil, model.ErrInvalidChannel
	}

	s.mu.Lock()
	switch {
	case s.state == model.CheckoutAwaitingSubmission:
		s.mu.Unlock()
		s.logger.Warn().Str("channel", string(channel)).Msg("duplicate submission rejected")
		return nil, model.ErrSubmissionInFlight
	case !s.state.CanSubmit():
		s.mu.Unlock()
		return nil, model.ErrCheckoutNotOpen
	}

	snapshot, err := s.cart.Hold()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if snapshot.IsEmpty() {
		s.cart.Release(false)
		s.mu.Unlock()
		return nil, model.ErrEmptyCart
	}

	extras := s.extras
	customer := model.ResolveCustomer(s.profile, s.extras)
	s.state = model.CheckoutAwaitingSubmission
	s.mu.Unlock()

	logger := s.logger.With().
		Str("channel", string(channel)).
		Int("item_count", len(snapshot.Items)).
		Int("total", snapshot.Totals.Total).
		Logger()
	logger.Info().Msg("submitting order")

	submission := model.NewOrderSubmission(snapshot, extras, customer, channel)
	result, err := s.orders.SubmitOrder(ctx, submission)

	if err != nil {
		var subErr *model.SubmissionError
		if !errors.As(err, &subErr) {
			subErr = model.NewUnreachableError(err)
		}

		s.cart.Release(false)
		s.setState(model.CheckoutFailed)
		logger.Warn().
			Err(err).
			Str("kind", string(subErr.Kind)).
			Msg("order submission failed, cart preserved")

		if channel == model.ChannelWhatsApp {
			return s.receipt(channel, snapshot, extras, customer, ""), subErr
		}
		return nil, subErr
	}

	orderID := ""
	if result != nil {
		orderID = result.OrderID
	}

	s.cart.Release(true)
	s.setState(model.CheckoutConfirmed)

	logger.Info().Str("order_id", orderID).Msg("order confirmed")

	receipt := &model.Receipt{Channel: channel, Accepted: true, OrderID: orderID}
	if channel == model.ChannelWhatsApp {
		receipt = s.receipt(channel, snapshot, extras, customer, orderID)
		receipt.Accepted = true
	}
	return receipt, nil
}

// receipt builds the WhatsApp hand-off for the submitted snapshot.
func (s *checkoutService) receipt(
	channel model.Channel,
	snapshot model.CartSnapshot,
	extras model.OrderExtras,
	customer model.Customer,
	orderID string,
) *model.Receipt {
	text := s.formatter.Format(message.NewOrder(snapshot, extras, customer, orderID))
	return &model.Receipt{
		Channel:      channel,
		OrderID:      orderID,
		Message:      text,
		WhatsAppLink: message.WhatsAppLink(s.whatsAppPhone, text),
	}
}

// State returns the current checkout state.
func (s *checkoutService) State() model.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset returns to Idle unless a submission is outstanding.
func (s *checkoutService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == model.CheckoutAwaitingSubmission {
		return model.ErrSubmissionInFlight
	}
	s.state = model.CheckoutIdle
	return nil
}

func (s *checkoutService) setState(state model.CheckoutState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
