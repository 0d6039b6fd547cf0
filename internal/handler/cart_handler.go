package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"premi-cart/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

// AddItemRequest is the payload of POST /api/cart/items.
type AddItemRequest struct {
	Name  string `json:"name"`
	Price *int   `json:"price"`
	Size  string `json:"size"`
	Image string `json:"image"`
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Cart.Snapshot())
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "name is required", h.logger)
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "price is required", h.logger)
		return
	}
	if *req.Price < 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidPrice, "price must not be negative", h.logger)
		return
	}

	if _, err := s.Cart.AddItem(req.Name, *req.Price, req.Size, req.Image); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, s.Cart.Snapshot())
}

// Increment handles POST /api/cart/items/{id}/increment requests.
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(id uuid.UUID, cart cartMutator) error {
		return cart.Increment(id)
	})
}

// Decrement handles POST /api/cart/items/{id}/decrement requests.
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(id uuid.UUID, cart cartMutator) error {
		return cart.Decrement(id)
	})
}

// Remove handles DELETE /api/cart/items/{id} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(id uuid.UUID, cart cartMutator) error {
		return cart.Remove(id)
	})
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	if err := s.Cart.Clear(); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, s.Cart.Snapshot())
}

type cartMutator interface {
	Increment(id uuid.UUID) error
	Decrement(id uuid.UUID) error
	Remove(id uuid.UUID) error
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(uuid.UUID, cartMutator) error) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeItemNotFound, "invalid item ID format", h.logger)
		return
	}

	if err := fn(id, s.Cart); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, s.Cart.Snapshot())
}
