package service

import (
	"context"

	"premi-cart/internal/model"
)

// OrderSubmitter sends orders to the external order service.
type OrderSubmitter interface {
	// SubmitOrder places the order. Failures are *model.SubmissionError.
	SubmitOrder(ctx context.Context, order *model.OrderSubmission) (*model.OrderResult, error)
}

// ProfileLookup resolves the logged-in customer, if any.
type ProfileLookup interface {
	// LookupProfile returns nil without error for guests.
	LookupProfile(ctx context.Context) (*model.Profile, error)
}

// CheckoutService drives one session through checkout.
type CheckoutService interface {
	// Open snapshots the cart for review and prefills customer details.
	Open(ctx context.Context) (*model.CheckoutReview, error)

	// SetExtras records the address, notes and guest contact details.
	SetExtras(extras model.OrderExtras) model.OrderExtras

	// Preview renders the WhatsApp message as it would be sent now.
	Preview() string

	// Submit places the order on the given channel.
	Submit(ctx context.Context, channel model.Channel) (*model.Receipt, error)

	// State returns the current checkout state.
	State() model.CheckoutState

	// Reset returns to Idle unless a submission is outstanding.
	Reset() error
}
