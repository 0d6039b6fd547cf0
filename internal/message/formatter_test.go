package message

import (
	"net/url"
	"strings"
	"testing"

	"premi-cart/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() Order {
	items := []model.LineItem{
		{Name: "Salad", Size: "Regular", UnitPrice: 150, Quantity: 2},
		{Name: "Juice", Size: "Large", UnitPrice: 80, Quantity: 1},
	}
	return Order{
		Items:  items,
		Totals: model.ComputeTotals(items),
	}
}

func TestFormatter_Format_Guest(t *testing.T) {
	f := NewFormatter()

	expected := strings.Join([]string{
		"New order from Food Premi",
		"Name: Guest",
		"",
		"Items:",
		"1) Salad (Regular) x 2 - Rs 150 = Rs 300",
		"2) Juice (Large) x 1 - Rs 80 = Rs 80",
		"",
		"Subtotal: Rs 380",
		"Tax (5%): Rs 19",
		"Total: Rs 399",
		"",
		"Motto: GOOD FOR BODY, GREAT FOR SOUL",
	}, "\n")

	text := f.Format(sampleOrder())

	assert.Equal(t, expected, text)
	assert.NotContains(t, text, "Address:")
	assert.NotContains(t, text, "Phone:")
	assert.NotContains(t, text, "Notes:")
	assert.NotContains(t, text, "Order ID:")
}

func TestFormatter_Format_AllFields(t *testing.T) {
	f := NewFormatter()

	order := sampleOrder()
	order.OrderID = "ord-42"
	order.Customer = model.Customer{Name: "Asha", Phone: "98765 43210"}
	order.Extras = model.OrderExtras{Address: "12 MG Road", Notes: "No onions"}

	expected := strings.Join([]string{
		"New order from Food Premi",
		"Name: Asha",
		"Order ID: ord-42",
		"",
		"Items:",
		"1) Salad (Regular) x 2 - Rs 150 = Rs 300",
		"2) Juice (Large) x 1 - Rs 80 = Rs 80",
		"",
		"Subtotal: Rs 380",
		"Tax (5%): Rs 19",
		"Total: Rs 399",
		"",
		"Address: 12 MG Road",
		"Phone: 98765 43210",
		"Notes: No onions",
		"",
		"Motto: GOOD FOR BODY, GREAT FOR SOUL",
	}, "\n")

	assert.Equal(t, expected, f.Format(order))
}

func TestFormatter_Format_OptionalFields(t *testing.T) {
	tests := []struct {
		name       string
		extras     model.OrderExtras
		customer   model.Customer
		contains   []string
		notContain []string
	}{
		{
			name:       "Phone only",
			customer:   model.Customer{Phone: "555"},
			contains:   []string{"Total: Rs 399\nPhone: 555\n"},
			notContain: []string{"Address:", "Notes:"},
		},
		{
			name:       "Notes only",
			extras:     model.OrderExtras{Notes: "Extra spicy"},
			contains:   []string{"Total: Rs 399\nNotes: Extra spicy\n"},
			notContain: []string{"Address:", "Phone:"},
		},
		{
			name:       "Address adds a separating blank line",
			extras:     model.OrderExtras{Address: "Flat 3"},
			contains:   []string{"Total: Rs 399\n\nAddress: Flat 3\n\nMotto:"},
			notContain: []string{"Phone:", "Notes:"},
		},
	}

	f := NewFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := sampleOrder()
			order.Extras = tt.extras
			order.Customer = tt.customer

			text := f.Format(order)
			for _, s := range tt.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.notContain {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestFormatter_Preview_DropsOrderID(t *testing.T) {
	f := NewFormatter()
	order := sampleOrder()
	order.OrderID = "ord-1"

	preview := f.Preview(order)

	assert.NotContains(t, preview, "Order ID:")
	assert.Equal(t, "ord-1", order.OrderID)
}

func TestFormatter_Format_IsDeterministic(t *testing.T) {
	f := NewFormatter()
	order := sampleOrder()

	assert.Equal(t, f.Format(order), f.Format(order))
}

func TestNewOrder(t *testing.T) {
	snapshot := model.CartSnapshot{
		Items:  sampleOrder().Items,
		Totals: sampleOrder().Totals,
	}
	order := NewOrder(snapshot, model.OrderExtras{Notes: "n"}, model.Customer{Name: "A"}, "id")

	assert.Equal(t, snapshot.Items, order.Items)
	assert.Equal(t, 399, order.Totals.Total)
	assert.Equal(t, "n", order.Extras.Notes)
	assert.Equal(t, "A", order.Customer.Name)
	assert.Equal(t, "id", order.OrderID)
}

func TestWhatsAppLink(t *testing.T) {
	text := "New order\nName: A & B\nTotal: Rs 1+1"
	link := WhatsAppLink("+91 81712-03683", text)

	require.True(t, strings.HasPrefix(link, "https://wa.me/918171203683?text="))
	assert.NotContains(t, link, "+")
	assert.Contains(t, link, "%20")
	assert.Contains(t, link, "%0A")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, text, parsed.Query().Get("text"))
}
