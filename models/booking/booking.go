package booking

import (
	"time"
)

// Booking represents a class reservation made from the website form or the WhatsApp bot.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Class reference lives in the headless CMS, so only the id/name snapshot is stored here.
	ClassID   string `gorm:"type:varchar(255);not null;index" json:"class_id"`
	ClassName string `gorm:"type:varchar(255);not null" json:"class_name"`

	CustomerName  string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(20);not null;index" json:"customer_phone"`

	PaymentType    PaymentType `gorm:"size:20;not null;default:full_course" json:"payment_type"`
	NumberOfGuests int         `gorm:"not null;default:1" json:"number_of_guests"`
	SessionsBooked int         `gorm:"not null;default:1" json:"sessions_booked"`

	// Amounts are kept in major currency units. AmountPaid + AmountDue == TotalAmount
	// is the intended identity; the webhook reconciler maintains it on every update.
	TotalAmount  float64 `gorm:"not null" json:"total_amount"`
	AmountPaid   float64 `gorm:"not null;default:0" json:"amount_paid"`
	AmountDue    float64 `gorm:"not null;default:0" json:"amount_due"`
	RefundAmount float64 `gorm:"not null;default:0" json:"refund_amount"`

	Status        BookingStatus `gorm:"size:20;not null;default:pending" json:"status"`
	PaymentMethod string        `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	Source        BookingSource `gorm:"size:20;not null;default:website" json:"source"`

	StripeCheckoutSessionID *string `gorm:"type:varchar(255);index" json:"stripe_checkout_session_id,omitempty"`
	StripePaymentIntentID   *string `gorm:"type:varchar(255);index" json:"stripe_payment_intent_id,omitempty"`

	EmailSent bool `gorm:"default:false" json:"email_sent"`

	Guests []BookingGuest `gorm:"foreignKey:BookingID" json:"guests,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	PaidAt      *time.Time `gorm:"index" json:"paid_at,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
	DeletedAt   *time.Time `gorm:"index" json:"deleted_at,omitempty"` // Soft delete field
}

// TableName sets the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// PaymentType distinguishes full-course payment from per-session payment
type PaymentType string

const (
	PaymentTypeFullCourse PaymentType = "full_course"
	PaymentTypePerSession PaymentType = "per_session"
)

// BookingSource identifies which channel created the booking
type BookingSource string

const (
	BookingSourceWebsite  BookingSource = "website"
	BookingSourceWhatsApp BookingSource = "whatsapp"
)
