package webhook

import (
	"encoding/json"
	"fmt"
)

// EventKind is the provider's event type string.
type EventKind string

const (
	EventCheckoutCompleted      EventKind = "checkout.session.completed"
	EventCheckoutExpired        EventKind = "checkout.session.expired"
	EventPaymentIntentSucceeded EventKind = "payment_intent.succeeded"
	EventPaymentIntentFailed    EventKind = "payment_intent.payment_failed"
	EventInvoicePaid            EventKind = "invoice.paid"
	EventChargeRefunded         EventKind = "charge.refunded"
)

// Metadata is the free-form key/value bag attached to checkout sessions.
// The booking flow stamps booking_id, the payment-link flow payment_link_id.
type Metadata struct {
	BookingID     string `json:"booking_id,omitempty"`
	PaymentLinkID string `json:"payment_link_id,omitempty"`
}

// CheckoutSession is the data object of checkout.session.* events.
type CheckoutSession struct {
	ID            string   `json:"id"`
	AmountTotal   int64    `json:"amount_total"` // cents
	Currency      string   `json:"currency"`
	PaymentIntent string   `json:"payment_intent"`
	PaymentStatus string   `json:"payment_status"`
	CustomerEmail string   `json:"customer_email"`
	Metadata      Metadata `json:"metadata"`
}

// PaymentIntent is the data object of payment_intent.* events.
type PaymentIntent struct {
	ID       string   `json:"id"`
	Amount   int64    `json:"amount"` // cents
	Currency string   `json:"currency"`
	Status   string   `json:"status"`
	Metadata Metadata `json:"metadata"`
}

// Invoice is the data object of invoice.* events.
type Invoice struct {
	ID         string   `json:"id"`
	AmountPaid int64    `json:"amount_paid"` // cents
	Currency   string   `json:"currency"`
	Metadata   Metadata `json:"metadata"`
}

// Charge is the data object of charge.* events.
type Charge struct {
	ID             string `json:"id"`
	Amount         int64  `json:"amount"`          // cents
	AmountRefunded int64  `json:"amount_refunded"` // cents
	Currency       string `json:"currency"`
	PaymentIntent  string `json:"payment_intent"`
	Refunded       bool   `json:"refunded"`
}

// Event is one parsed provider event. Kind decides which of the variant
// pointers is populated; kinds outside the handled set leave all variants
// nil and are acknowledged without effect.
type Event struct {
	ID      string    `json:"id"`
	Kind    EventKind `json:"type"`
	Created int64     `json:"created"`

	CheckoutSession *CheckoutSession `json:"-"`
	PaymentIntent   *PaymentIntent   `json:"-"`
	Invoice         *Invoice         `json:"-"`
	Charge          *Charge          `json:"-"`
}

type rawEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a raw webhook body into a tagged Event. Only the data
// object matching the event kind is decoded; everything else is left alone.
func ParseEvent(body []byte) (*Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}
	if raw.ID == "" || raw.Type == "" {
		return nil, fmt.Errorf("webhook payload missing id or type")
	}

	evt := &Event{
		ID:      raw.ID,
		Kind:    EventKind(raw.Type),
		Created: raw.Created,
	}

	switch evt.Kind {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var cs CheckoutSession
		if err := json.Unmarshal(raw.Data.Object, &cs); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session object: %w", err)
		}
		evt.CheckoutSession = &cs
	case EventPaymentIntentSucceeded, EventPaymentIntentFailed:
		var pi PaymentIntent
		if err := json.Unmarshal(raw.Data.Object, &pi); err != nil {
			return nil, fmt.Errorf("failed to decode payment intent object: %w", err)
		}
		evt.PaymentIntent = &pi
	case EventInvoicePaid:
		var inv Invoice
		if err := json.Unmarshal(raw.Data.Object, &inv); err != nil {
			return nil, fmt.Errorf("failed to decode invoice object: %w", err)
		}
		evt.Invoice = &inv
	case EventChargeRefunded:
		var ch Charge
		if err := json.Unmarshal(raw.Data.Object, &ch); err != nil {
			return nil, fmt.Errorf("failed to decode charge object: %w", err)
		}
		evt.Charge = &ch
	}

	return evt, nil
}
