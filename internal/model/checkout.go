package model

// CheckoutState is the position of a session in the checkout flow.
type CheckoutState string

const (
	CheckoutIdle               CheckoutState = "IDLE"
	CheckoutReviewingCart      CheckoutState = "REVIEWING_CART"
	CheckoutAwaitingSubmission CheckoutState = "AWAITING_SUBMISSION"
	CheckoutConfirmed          CheckoutState = "CONFIRMED"
	CheckoutFailed             CheckoutState = "FAILED"
)

// CanOpen reports whether checkout may be (re)opened from this state.
func (s CheckoutState) CanOpen() bool {
	return s != CheckoutAwaitingSubmission
}

// CanSubmit reports whether a submission may start from this state.
// Failed returns to review implicitly so the customer can retry.
func (s CheckoutState) CanSubmit() bool {
	return s == CheckoutReviewingCart || s == CheckoutFailed
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}
