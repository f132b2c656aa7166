package booking

import (
	"time"
)

// BookingGuest is one named attendee under a multi-guest booking. Rows are
// created when the booking is confirmed (payment completed), not when the
// booking itself is created, so pending bookings never carry guest rows.
type BookingGuest struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID uint    `gorm:"not null;index" json:"booking_id"`
	Booking   Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`

	Name string `gorm:"type:varchar(255);not null" json:"name"`

	// QRToken is the per-guest check-in token embedded in the confirmation email.
	QRToken string `gorm:"type:varchar(255);not null;uniqueIndex" json:"qr_token"`

	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the BookingGuest model
func (BookingGuest) TableName() string {
	return "booking_guests"
}
