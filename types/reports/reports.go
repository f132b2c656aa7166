package reports

import "time"

// Overview is the top-level dashboard aggregate.
type Overview struct {
	TotalBookings     int     `json:"total_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
	OutstandingDue    float64 `json:"outstanding_due"`
	RefundedAmount    float64 `json:"refunded_amount"`
	TotalGuests       int     `json:"total_guests"`
	WhatsAppBookings  int     `json:"whatsapp_bookings"`
	WebsiteBookings   int     `json:"website_bookings"`
}

// ClientStat is one row of the top-clients report, ranked by spend.
type ClientStat struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Bookings   int       `json:"bookings"`
	TotalSpent float64   `json:"total_spent"`
	LastVisit  time.Time `json:"last_visit"`
}

// ClassStat is one row of the per-class report, ranked by revenue.
type ClassStat struct {
	ClassID  string  `json:"class_id"`
	Name     string  `json:"name"`
	Bookings int     `json:"bookings"`
	Guests   int     `json:"guests"`
	Revenue  float64 `json:"revenue"`
}

// RevenueBucket is one day (or month) of the revenue time series.
type RevenueBucket struct {
	Date     string  `json:"date"` // 2006-01-02 for daily, 2006-01 for monthly
	Revenue  float64 `json:"revenue"`
	Bookings int     `json:"bookings"`
}

// Range is the resolved reporting window.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
