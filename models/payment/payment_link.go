package payment

import (
	"time"
)

// PaymentLinkStatus represents the lifecycle state of a payment link
type PaymentLinkStatus string

const (
	PaymentLinkStatusActive  PaymentLinkStatus = "active"
	PaymentLinkStatusPaid    PaymentLinkStatus = "paid"
	PaymentLinkStatusExpired PaymentLinkStatus = "expired"
)

func (ps PaymentLinkStatus) String() string {
	return string(ps)
}

// PaymentLink is an externally hosted checkout URL tied to a booking,
// a service booking or an invoice. Reusable links stay active until the
// use counter reaches MaxUses.
type PaymentLink struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	Token string `gorm:"type:varchar(255);not null;uniqueIndex" json:"token"`

	BookingID        *uint `gorm:"index" json:"booking_id,omitempty"`
	ServiceBookingID *uint `gorm:"index" json:"service_booking_id,omitempty"`
	InvoiceID        *uint `gorm:"index" json:"invoice_id,omitempty"`

	Amount      float64 `gorm:"not null" json:"amount"`
	Description string  `gorm:"type:text" json:"description,omitempty"`

	SingleUse bool `gorm:"default:true" json:"single_use"`
	MaxUses   int  `gorm:"default:1" json:"max_uses"`
	UseCount  int  `gorm:"default:0" json:"use_count"`

	Status  PaymentLinkStatus `gorm:"size:20;not null;default:active" json:"status"`
	QRToken *string           `gorm:"type:varchar(255)" json:"qr_token,omitempty"`

	CreatedBy string     `gorm:"type:varchar(255)" json:"created_by,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// TableName sets the table name for the PaymentLink model
func (PaymentLink) TableName() string {
	return "payment_links"
}

// IsExhausted returns true if the link has reached its usage limit
func (pl *PaymentLink) IsExhausted() bool {
	if pl.SingleUse {
		return pl.UseCount >= 1
	}
	return pl.MaxUses > 0 && pl.UseCount >= pl.MaxUses
}

// IsUsable returns true if the link can still accept a payment
func (pl *PaymentLink) IsUsable() bool {
	if pl.Status != PaymentLinkStatusActive {
		return false
	}
	if pl.ExpiresAt != nil && time.Now().After(*pl.ExpiresAt) {
		return false
	}
	return !pl.IsExhausted()
}
