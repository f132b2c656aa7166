package payment

import (
	"time"
)

// TransactionType classifies a payment transaction audit row
type TransactionType string

const (
	TransactionTypePayment       TransactionType = "payment"
	TransactionTypeRefund        TransactionType = "refund"
	TransactionTypePartialRefund TransactionType = "partial_refund"
	TransactionTypeFailed        TransactionType = "failed"
)

func (tt TransactionType) String() string {
	return string(tt)
}

func (tt TransactionType) IsValid() bool {
	switch tt {
	case TransactionTypePayment, TransactionTypeRefund, TransactionTypePartialRefund, TransactionTypeFailed:
		return true
	default:
		return false
	}
}

// Transaction is the append-only audit row written for every payment event
// the webhook reconciler applies. StripeEventID carries a unique index so a
// redelivered provider event cannot insert a second row for the same event.
type Transaction struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID        *uint `gorm:"index" json:"booking_id,omitempty"`
	PaymentLinkID    *uint `gorm:"index" json:"payment_link_id,omitempty"`
	InvoiceID        *uint `gorm:"index" json:"invoice_id,omitempty"`
	ServiceBookingID *uint `gorm:"index" json:"service_booking_id,omitempty"`

	Type     TransactionType `gorm:"size:20;not null" json:"type"`
	Amount   float64         `gorm:"not null" json:"amount"`
	Currency string          `gorm:"type:varchar(10);not null;default:usd" json:"currency"`
	Status   string          `gorm:"type:varchar(50);not null" json:"status"`

	StripeEventID           string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"stripe_event_id"`
	StripeCheckoutSessionID *string `gorm:"type:varchar(255);index" json:"stripe_checkout_session_id,omitempty"`
	StripePaymentIntentID   *string `gorm:"type:varchar(255);index" json:"stripe_payment_intent_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the Transaction model
func (Transaction) TableName() string {
	return "payment_transactions"
}
