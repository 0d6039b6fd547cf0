package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"premi-cart/internal/model"
	"premi-cart/internal/orderapi"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCheckoutHandler_Open(t *testing.T) {
	h := NewCheckoutHandler(zerolog.Nop())

	t.Run("Empty cart", func(t *testing.T) {
		s := newTestSession(&MockOrderSubmitter{})

		w := httptest.NewRecorder()
		h.Open(w, newRequest(t, http.MethodPost, "/api/checkout", nil, s, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeEmptyCart, decodeError(t, w).Error)
		assert.Equal(t, model.CheckoutIdle, s.Checkout.State())
	})

	t.Run("Success", func(t *testing.T) {
		s := newTestSession(&MockOrderSubmitter{})
		s.Cart.AddItem("Salad", 150, "Regular", "")

		w := httptest.NewRecorder()
		h.Open(w, newRequest(t, http.MethodPost, "/api/checkout", nil, s, nil))

		require.Equal(t, http.StatusOK, w.Code)
		var review model.CheckoutReview
		require.NoError(t, json.NewDecoder(w.Body).Decode(&review))
		assert.Equal(t, model.CheckoutReviewingCart, review.State)
		assert.Equal(t, 1, review.Cart.Count)
		assert.Equal(t, 158, review.Cart.Totals.Total)
	})
}

func TestCheckoutHandler_State(t *testing.T) {
	h := NewCheckoutHandler(zerolog.Nop())
	s := newTestSession(&MockOrderSubmitter{})

	w := httptest.NewRecorder()
	h.State(w, newRequest(t, http.MethodGet, "/api/checkout", nil, s, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp StateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, model.CheckoutIdle, resp.State)
}

func TestCheckoutHandler_SetExtrasAndPreview(t *testing.T) {
	h := NewCheckoutHandler(zerolog.Nop())
	s := newTestSession(&MockOrderSubmitter{})
	s.Cart.AddItem("Salad", 150, "Regular", "")

	body := model.OrderExtras{Address: "  12 MG Road  ", Notes: "No onions", GuestName: "Asha"}
	w := httptest.NewRecorder()
	h.SetExtras(w, newRequest(t, http.MethodPut, "/api/checkout/extras", body, s, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var extras model.OrderExtras
	require.NoError(t, json.NewDecoder(w.Body).Decode(&extras))
	assert.Equal(t, "12 MG Road", extras.Address)

	w = httptest.NewRecorder()
	h.Preview(w, newRequest(t, http.MethodGet, "/api/checkout/preview", nil, s, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var preview PreviewResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&preview))
	assert.Contains(t, preview.Message, "Name: Asha")
	assert.Contains(t, preview.Message, "1) Salad (Regular) x 1 - Rs 150 = Rs 150")
	assert.Contains(t, preview.Message, "Address: 12 MG Road")
	assert.Contains(t, preview.Message, "Notes: No onions")
}

func TestCheckoutHandler_SetExtras_InvalidJSON(t *testing.T) {
	h := NewCheckoutHandler(zerolog.Nop())
	s := newTestSession(&MockOrderSubmitter{})

	w := httptest.NewRecorder()
	h.SetExtras(w, newRequest(t, http.MethodPut, "/api/checkout/extras", "{", s, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodeInvalidJSON, decodeError(t, w).Error)
}

func TestCheckoutHandler_Submit_RequestErrors(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		open           bool
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Invalid JSON",
			body:           "{",
			open:           true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Invalid channel",
			body:           SubmitRequest{Channel: "sms"},
			open:           true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidChannel,
		},
		{
			name:           "Checkout not open",
			body:           SubmitRequest{Channel: "direct"},
			open:           false,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeCheckoutNotOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCheckoutHandler(zerolog.Nop())
			orders := &MockOrderSubmitter{}
			s := newTestSession(orders)
			s.Cart.AddItem("Salad", 150, "Regular", "")
			if tt.open {
				_, err := s.Checkout.Open(context.Background())
				require.NoError(t, err)
			}

			w := httptest.NewRecorder()
			h.Submit(w, newRequest(t, http.MethodPost, "/api/checkout/submit", tt.body, s, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			orders.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything)
			assert.Equal(t, 1, s.Cart.Count())
		})
	}
}

func TestCheckoutHandler_Submit_Direct(t *testing.T) {
	h := NewCheckoutHandler(zerolog.Nop())
	orders := &MockOrderSubmitter{}
	s := newTestSession(orders)
	s.Cart.AddItem("Salad", 150, "Regular", "")
	_, err := s.Checkout.Open(context.Background())
	require.NoError(t, err)

	orders.On("SubmitOrder",
		mock.MatchedBy(func(ctx context.Context) bool {
			return orderapi.ForwardedCookie(ctx) == "sid=abc"
		}),
		mock.MatchedBy(func(o *model.OrderSubmission) bool {
			return o.Channel == "web-no-wa" && o.Total == 158
		}),
	).Return(&model.OrderResult{OrderID: "ORD-42"}, nil)

	req := newRequest(t, http.MethodPost, "/api/checkout/submit", SubmitRequest{Channel: "direct"}, s, nil)
	req.Header.Set("Cookie", "sid=abc")
	w := httptest.NewRecorder()
	h.Submit(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var receipt model.Receipt
	require.NoError(t, json.NewDecoder(w.Body).Decode(&receipt))
	assert.True(t, receipt.Accepted)
	assert.Equal(t, "ORD-42", receipt.OrderID)
	assert.Empty(t, receipt.WhatsAppLink)
	assert.True(t, s.Cart.IsEmpty())
	assert.Equal(t, model.CheckoutConfirmed, s.Checkout.State())
	orders.AssertExpectations(t)
}

func TestCheckoutHandler_Submit_DirectFailure(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedCode    string
		expectedMessage string
	}{
		{
			name:            "Rejected",
			err:             model.NewRejectedError(http.StatusBadRequest, "Kitchen closed"),
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedCode:    model.ErrCodeSubmissionRejected,
			expectedMessage: "Kitchen closed",
		},
		{
			name:            "Unauthenticated",
			err:             model.NewRejectedError(http.StatusUnauthorized, ""),
			expectedStatus:  http.StatusUnauthorized,
			expectedCode:    model.ErrCodeUnauthenticated,
			expectedMessage: model.FallbackRejectedMessage,
		},
		{
			name:            "Unreachable",
			err:             model.NewUnreachableError(assert.AnError),
			expectedStatus:  http.StatusBadGateway,
			expectedCode:    model.ErrCodeSubmissionFailed,
			expectedMessage: model.FallbackUnreachableMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCheckoutHandler(zerolog.Nop())
			orders := &MockOrderSubmitter{}
			s := newTestSession(orders)
			s.Cart.AddItem("Salad", 150, "Regular", "")
			_, err := s.Checkout.Open(context.Background())
			require.NoError(t, err)

			orders.On("SubmitOrder", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			h.Submit(w, newRequest(t, http.MethodPost, "/api/checkout/submit", SubmitRequest{Channel: "direct"}, s, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, resp.Error)
			assert.Equal(t, tt.expectedMessage, resp.Message)
			assert.Equal(t, 1, s.Cart.Count())
			assert.Equal(t, model.CheckoutFailed, s.Checkout.State())
		})
	}
}

func TestCheckoutHandler_Submit_WhatsAppFailureKeepsHandoff(t *testing.T) {
	h := NewCheckoutHandler(zerolog.Nop())
	orders := &MockOrderSubmitter{}
	s := newTestSession(orders)
	s.Cart.AddItem("Salad", 150, "Regular", "")
	_, err := s.Checkout.Open(context.Background())
	require.NoError(t, err)

	orders.On("SubmitOrder", mock.Anything, mock.Anything).
		Return(nil, model.NewUnreachableError(assert.AnError))

	w := httptest.NewRecorder()
	h.Submit(w, newRequest(t, http.MethodPost, "/api/checkout/submit", SubmitRequest{Channel: "whatsapp"}, s, nil))

	require.Equal(t, http.StatusBadGateway, w.Code)
	var resp SubmitErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeSubmissionFailed, resp.Error)
	require.NotNil(t, resp.Receipt)
	assert.False(t, resp.Receipt.Accepted)
	assert.True(t, strings.HasPrefix(resp.Receipt.WhatsAppLink, "https://wa.me/918171203683?text="))
	assert.Contains(t, resp.Receipt.Message, "Salad (Regular) x 1")
	assert.Equal(t, 1, s.Cart.Count())
}

func TestCheckoutHandler_Submit_WhatsAppSuccess(t *testing.T) {
	h := NewCheckoutHandler(zerolog.Nop())
	orders := &MockOrderSubmitter{}
	s := newTestSession(orders)
	s.Cart.AddItem("Salad", 150, "Regular", "")
	_, err := s.Checkout.Open(context.Background())
	require.NoError(t, err)

	orders.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(o *model.OrderSubmission) bool {
		return o.Channel == "web"
	})).Return(&model.OrderResult{OrderID: "ORD-7"}, nil)

	w := httptest.NewRecorder()
	h.Submit(w, newRequest(t, http.MethodPost, "/api/checkout/submit", SubmitRequest{Channel: "whatsapp"}, s, nil))

	require.Equal(t, http.StatusCreated, w.Code)
	var receipt model.Receipt
	require.NoError(t, json.NewDecoder(w.Body).Decode(&receipt))
	assert.True(t, receipt.Accepted)
	assert.Contains(t, receipt.Message, "Order ID: ORD-7")
	assert.NotEmpty(t, receipt.WhatsAppLink)
	assert.True(t, s.Cart.IsEmpty())
}

func TestCheckoutHandler_Reset(t *testing.T) {
	h := NewCheckoutHandler(zerolog.Nop())
	s := newTestSession(&MockOrderSubmitter{})
	s.Cart.AddItem("Salad", 150, "Regular", "")
	_, err := s.Checkout.Open(context.Background())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Reset(w, newRequest(t, http.MethodDelete, "/api/checkout", nil, s, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp StateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, model.CheckoutIdle, resp.State)
	assert.Equal(t, 1, s.Cart.Count())
}
