package model

import "strings"

// Channel identifies which checkout path placed an order.
type Channel string

const (
	// ChannelWhatsApp submits the order and hands a text summary to WhatsApp,
	// even when the backend submission fails.
	ChannelWhatsApp Channel = "whatsapp"
	// ChannelDirect requires the backend to accept the order.
	ChannelDirect Channel = "direct"
)

// ParseChannel converts a request value into a Channel.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelWhatsApp:
		return ChannelWhatsApp, nil
	case ChannelDirect:
		return ChannelDirect, nil
	}
	return "", ErrInvalidChannel
}

// Tag returns the channel value the order service expects.
func (c Channel) Tag() string {
	if c == ChannelDirect {
		return "web-no-wa"
	}
	return "web"
}

// OrderExtras holds what the customer typed at checkout.
type OrderExtras struct {
	Address    string `json:"address"`
	Notes      string `json:"notes"`
	GuestName  string `json:"name"`
	GuestPhone string `json:"phone"`
}

// Normalised returns the extras with surrounding whitespace removed.
func (e OrderExtras) Normalised() OrderExtras {
	return OrderExtras{
		Address:    strings.TrimSpace(e.Address),
		Notes:      strings.TrimSpace(e.Notes),
		GuestName:  strings.TrimSpace(e.GuestName),
		GuestPhone: strings.TrimSpace(e.GuestPhone),
	}
}

// Profile is the authenticated customer as reported by the order service.
type Profile struct {
	UserID   string `json:"user_id,omitempty"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Email    string `json:"email,omitempty"`
	UserName string `json:"-"`
}

// Customer is the resolved identity attached to an order.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ResolveCustomer picks name and phone from the profile first, then the
// guest-entered values. Missing values stay empty.
func ResolveCustomer(profile *Profile, extras OrderExtras) Customer {
	var c Customer
	if profile != nil {
		c.Name = firstNonEmpty(profile.UserName, profile.Name)
		c.Phone = profile.Phone
	}
	c.Name = firstNonEmpty(c.Name, extras.GuestName)
	c.Phone = firstNonEmpty(c.Phone, extras.GuestPhone)
	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// OrderSubmissionItem is one line of the outbound order payload.
type OrderSubmissionItem struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Image    string `json:"image"`
}

// OrderSubmission is the payload sent to POST /orders.
type OrderSubmission struct {
	Items         []OrderSubmissionItem `json:"items"`
	Subtotal      int                   `json:"subtotal"`
	Tax           int                   `json:"tax"`
	Total         int                   `json:"total_amount"`
	Channel       string                `json:"channel"`
	Address       string                `json:"address"`
	Notes         string                `json:"notes"`
	CustomerName  string                `json:"customer_name"`
	CustomerPhone string                `json:"customer_phone"`
}

// NewOrderSubmission builds the outbound payload from a cart snapshot.
func NewOrderSubmission(snapshot CartSnapshot, extras OrderExtras, customer Customer, channel Channel) *OrderSubmission {
	items := make([]OrderSubmissionItem, len(snapshot.Items))
	for i, it := range snapshot.Items {
		items[i] = OrderSubmissionItem{
			Name:     it.Name,
			Size:     it.Size,
			Price:    it.UnitPrice,
			Quantity: it.Quantity,
			Image:    it.Image,
		}
	}
	return &OrderSubmission{
		Items:         items,
		Subtotal:      snapshot.Totals.Subtotal,
		Tax:           snapshot.Totals.Tax,
		Total:         snapshot.Totals.Total,
		Channel:       channel.Tag(),
		Address:       extras.Address,
		Notes:         extras.Notes,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
	}
}

// OrderResult is what the order service returns for an accepted order.
type OrderResult struct {
	OrderID string `json:"orderId,omitempty"`
}

// Receipt describes the outcome of a checkout submission.
type Receipt struct {
	Channel      Channel `json:"channel"`
	Accepted     bool    `json:"accepted"`
	OrderID      string  `json:"orderId,omitempty"`
	Message      string  `json:"message,omitempty"`
	WhatsAppLink string  `json:"whatsappLink,omitempty"`
}

// CheckoutReview is what the customer sees when opening checkout.
type CheckoutReview struct {
	State    CheckoutState `json:"state"`
	Cart     CartSnapshot  `json:"cart"`
	Extras   OrderExtras   `json:"extras"`
	Customer Customer      `json:"customer"`
}
