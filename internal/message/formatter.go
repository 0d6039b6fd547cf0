// Package message renders orders as the plain-text summary handed off to
// WhatsApp.
package message

import (
	"fmt"
	"net/url"
	"strings"

	"premi-cart/internal/model"
)

const (
	DefaultTitle = "New order from Food Premi"
	DefaultMotto = "Motto: GOOD FOR BODY, GREAT FOR SOUL"

	guestName = "Guest"
)

// Order is everything the formatter needs to render a summary.
type Order struct {
	Items    []model.LineItem
	Totals   model.Totals
	Extras   model.OrderExtras
	Customer model.Customer
	OrderID  string
}

// NewOrder builds an Order from a cart snapshot.
func NewOrder(snapshot model.CartSnapshot, extras model.OrderExtras, customer model.Customer, orderID string) Order {
	return Order{
		Items:    snapshot.Items,
		Totals:   snapshot.Totals,
		Extras:   extras,
		Customer: customer,
		OrderID:  orderID,
	}
}

// Formatter renders order summaries. The zero value uses no title or motto;
// use NewFormatter for the site defaults.
type Formatter struct {
	Title string
	Motto string
}

// NewFormatter returns a formatter with the default title and motto.
func NewFormatter() *Formatter {
	return &Formatter{
		Title: DefaultTitle,
		Motto: DefaultMotto,
	}
}

// Format renders the order. Field order and labels are fixed; optional
// fields are omitted entirely when empty.
func (f *Formatter) Format(o Order) string {
	name := o.Customer.Name
	if name == "" {
		name = guestName
	}

	lines := make([]string, 0, len(o.Items)+16)
	lines = append(lines, f.Title)
	lines = append(lines, "Name: "+name)
	if o.OrderID != "" {
		lines = append(lines, "Order ID: "+o.OrderID)
	}

	lines = append(lines, "", "Items:")
	for i, it := range o.Items {
		lines = append(lines, fmt.Sprintf("%d) %s (%s) x %d - Rs %d = Rs %d",
			i+1, it.Name, it.Size, it.Quantity, it.UnitPrice, it.LineTotal()))
	}

	lines = append(lines, "",
		fmt.Sprintf("Subtotal: Rs %d", o.Totals.Subtotal),
		fmt.Sprintf("Tax (%d%%): Rs %d", model.TaxPercent, o.Totals.Tax),
		fmt.Sprintf("Total: Rs %d", o.Totals.Total),
	)

	if o.Extras.Address != "" {
		lines = append(lines, "", "Address: "+o.Extras.Address)
	}
	if o.Customer.Phone != "" {
		lines = append(lines, "Phone: "+o.Customer.Phone)
	}
	if o.Extras.Notes != "" {
		lines = append(lines, "Notes: "+o.Extras.Notes)
	}

	lines = append(lines, "", f.Motto)

	return strings.Join(lines, "\n")
}

// Preview renders the order as it would be sent before an order id exists.
func (f *Formatter) Preview(o Order) string {
	o.OrderID = ""
	return f.Format(o)
}

// WhatsAppLink builds a wa.me deep link that opens a chat with phone and
// the given text prefilled. Non-digit characters are dropped from phone.
func WhatsAppLink(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	return "https://wa.me/" + digits + "?text=" + encodeComponent(text)
}

// encodeComponent percent-encodes s with spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
