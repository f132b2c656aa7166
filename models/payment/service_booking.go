package payment

import (
	"time"
)

// ServicePaymentStatus tracks how much of a service booking has been paid
type ServicePaymentStatus string

const (
	ServicePaymentStatusUnpaid      ServicePaymentStatus = "unpaid"
	ServicePaymentStatusDepositPaid ServicePaymentStatus = "deposit_paid"
	ServicePaymentStatusPaid        ServicePaymentStatus = "paid"
)

// ServiceBooking is a reservation for a private event or catering service,
// paid through a payment link rather than the class checkout flow. Deposit
// versus full payment is distinguished by comparing the paid amount to the
// total when the link is settled.
type ServiceBooking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	ServiceName string `gorm:"type:varchar(255);not null" json:"service_name"`

	CustomerName  string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(255)" json:"customer_email,omitempty"`
	CustomerPhone string `gorm:"type:varchar(20);index" json:"customer_phone,omitempty"`

	EventDate *time.Time `gorm:"index" json:"event_date,omitempty"`

	TotalAmount   float64 `gorm:"not null" json:"total_amount"`
	DepositAmount float64 `gorm:"not null;default:0" json:"deposit_amount"`
	AmountPaid    float64 `gorm:"not null;default:0" json:"amount_paid"`

	Status        string               `gorm:"type:varchar(20);not null;default:pending" json:"status"` // pending, confirmed, cancelled
	PaymentStatus ServicePaymentStatus `gorm:"size:20;not null;default:unpaid" json:"payment_status"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// TableName sets the table name for the ServiceBooking model
func (ServiceBooking) TableName() string {
	return "service_bookings"
}
