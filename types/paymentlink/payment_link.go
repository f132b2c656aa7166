package paymentlink

// CreateRequest is the admin payload for issuing a new payment link.
type CreateRequest struct {
	BookingID        *uint   `json:"booking_id,omitempty"`
	ServiceBookingID *uint   `json:"service_booking_id,omitempty"`
	InvoiceID        *uint   `json:"invoice_id,omitempty"`
	Amount           float64 `json:"amount"`
	Description      string  `json:"description,omitempty"`
	SingleUse        *bool   `json:"single_use,omitempty"` // defaults to true
	MaxUses          int     `json:"max_uses,omitempty"`
	ExpiresInDays    int     `json:"expires_in_days,omitempty"`
}
