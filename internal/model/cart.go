package model

import "github.com/google/uuid"

// TaxPercent is the flat tax applied to every order.
const TaxPercent = 5

// LineItem represents one (name, size) entry in the cart.
type LineItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      string    `json:"size"`
	UnitPrice int       `json:"price"`
	Quantity  int       `json:"quantity"`
	Image     string    `json:"image,omitempty"`
}

// LineTotal returns unit price times quantity.
func (i LineItem) LineTotal() int {
	return i.UnitPrice * i.Quantity
}

// Totals holds the amounts derived from a cart.
type Totals struct {
	Subtotal int `json:"subtotal"`
	Tax      int `json:"tax"`
	Total    int `json:"total"`
}

// ComputeTotals derives subtotal, tax and total from the given items.
// Tax is subtotal * 5% rounded half up.
func ComputeTotals(items []LineItem) Totals {
	subtotal := 0
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	tax := TaxFor(subtotal)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// TaxFor returns round-half-up(subtotal * TaxPercent / 100) for a non-negative subtotal.
func TaxFor(subtotal int) int {
	return (subtotal*TaxPercent + 50) / 100
}

// CartSnapshot is a point-in-time copy of the cart used for rendering.
type CartSnapshot struct {
	Items  []LineItem `json:"items"`
	Count  int        `json:"count"`
	Totals Totals     `json:"totals"`
}

// IsEmpty reports whether the snapshot holds no items.
func (s CartSnapshot) IsEmpty() bool {
	return len(s.Items) == 0
}
