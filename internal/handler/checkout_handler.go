package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"premi-cart/internal/model"
	"premi-cart/internal/orderapi"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout-related HTTP requests.
type CheckoutHandler struct {
	logger zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		logger: logger.With().Str("handler", "checkout").Logger(),
	}
}

// SubmitRequest is the payload of POST /api/checkout/submit.
type SubmitRequest struct {
	Channel string `json:"channel"`
}

// StateResponse is returned by GET /api/checkout.
type StateResponse struct {
	State model.CheckoutState `json:"state"`
}

// PreviewResponse is returned by GET /api/checkout/preview.
type PreviewResponse struct {
	Message string `json:"message"`
}

// SubmitErrorResponse carries the failure and, on the WhatsApp channel,
// the hand-off receipt that is still usable.
type SubmitErrorResponse struct {
	model.ErrorResponse
	Receipt *model.Receipt `json:"receipt,omitempty"`
}

// State handles GET /api/checkout requests.
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{State: s.Checkout.State()})
}

// Open handles POST /api/checkout requests.
func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	ctx := orderapi.WithForwardedCookie(r.Context(), r.Header.Get("Cookie"))
	review, err := s.Checkout.Open(ctx)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, review)
}

// SetExtras handles PUT /api/checkout/extras requests.
func (h *CheckoutHandler) SetExtras(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var extras model.OrderExtras
	if err := json.NewDecoder(r.Body).Decode(&extras); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, s.Checkout.SetExtras(extras))
}

// Preview handles GET /api/checkout/preview requests.
func (h *CheckoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{Message: s.Checkout.Preview()})
}

// Submit handles POST /api/checkout/submit requests.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	channel, err := model.ParseChannel(req.Channel)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	ctx := orderapi.WithForwardedCookie(r.Context(), r.Header.Get("Cookie"))
	receipt, err := s.Checkout.Submit(ctx, channel)
	if err != nil {
		var subErr *model.SubmissionError
		if receipt != nil && errors.As(err, &subErr) {
			h.logger.Warn().Err(err).Msg("order not stored, WhatsApp hand-off still available")
			writeJSON(w, submissionStatus(subErr), SubmitErrorResponse{
				ErrorResponse: model.ErrorResponse{Error: subErr.Code(), Message: subErr.Message},
				Receipt:       receipt,
			})
			return
		}
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// Reset handles DELETE /api/checkout requests.
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := s.Checkout.Reset(); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{State: s.Checkout.State()})
}
