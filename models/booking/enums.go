package booking

// Helper methods for BookingStatus
func (bs BookingStatus) String() string {
	return string(bs)
}

func (bs BookingStatus) IsValid() bool {
	switch bs {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	default:
		return false
	}
}

// IsFinal returns true if the booking can no longer change state
func (bs BookingStatus) IsFinal() bool {
	return bs == BookingStatusCancelled || bs == BookingStatusCompleted
}

// CanBeCancelled returns true if the booking may still be cancelled
func (bs BookingStatus) CanBeCancelled() bool {
	return bs == BookingStatusPending || bs == BookingStatusConfirmed
}

// CanBeCheckedIn returns true if guests of this booking may check in
func (bs BookingStatus) CanBeCheckedIn() bool {
	return bs == BookingStatusConfirmed
}

// GetAllBookingStatuses returns all valid booking statuses
func GetAllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusCancelled,
		BookingStatusCompleted,
	}
}

func (pt PaymentType) String() string {
	return string(pt)
}

func (pt PaymentType) IsValid() bool {
	return pt == PaymentTypeFullCourse || pt == PaymentTypePerSession
}

func (s BookingSource) String() string {
	return string(s)
}

func (s BookingSource) IsValid() bool {
	return s == BookingSourceWebsite || s == BookingSourceWhatsApp
}
