package booking

// BookingCreateRequest is the payload of the public website booking form.
type BookingCreateRequest struct {
	ClassID        string  `json:"class_id"`
	CustomerName   string  `json:"customer_name"`
	CustomerEmail  string  `json:"customer_email"`
	CustomerPhone  string  `json:"customer_phone"`
	PaymentType    string  `json:"payment_type"` // full_course or per_session
	NumberOfGuests int     `json:"number_of_guests"`
	SuccessURL     string  `json:"success_url,omitempty"`
	CancelURL      string  `json:"cancel_url,omitempty"`
	Amount         float64 `json:"amount,omitempty"` // per_session price override; full price comes from the CMS
}

// BookingListQuery captures the admin list filters.
type BookingListQuery struct {
	Status   string `query:"status"`
	Source   string `query:"source"`
	ClassID  string `query:"class_id"`
	Phone    string `query:"phone"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// CheckInRequest is the QR scan payload from the check-in screen.
type CheckInRequest struct {
	QRToken string `json:"qr_token"`
}

// CancelRequest optionally carries a reason for the audit trail.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}
