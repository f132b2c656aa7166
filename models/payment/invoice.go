package payment

import (
	"time"
)

// Invoice mirrors a provider-side invoice for a booking or a standalone sale.
type Invoice struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	Number string `gorm:"type:varchar(100);not null;uniqueIndex" json:"number"`

	BookingID *uint `gorm:"index" json:"booking_id,omitempty"`

	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	CustomerEmail string `gorm:"type:varchar(255)" json:"customer_email,omitempty"`

	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"type:varchar(10);not null;default:usd" json:"currency"`
	Status   string  `gorm:"type:varchar(20);not null;default:open" json:"status"` // open, paid, void

	StripeInvoiceID *string `gorm:"type:varchar(255);index" json:"stripe_invoice_id,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// TableName sets the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}
