package booking_event

import (
	bookingModel "culinary-booking/models/booking"

	"gorm.io/gorm"
)

// RecordStatusEvent appends a BookingStatusEvent row for the given booking.
// Events are append-only; one booking accumulates a row per status change.
func RecordStatusEvent(tx *gorm.DB, bookingID uint, status bookingModel.BookingStatus, createdBy string) error {
	event := bookingModel.BookingStatusEvent{
		BookingID: bookingID,
		Status:    status,
		CreatedBy: createdBy,
	}
	return tx.Create(&event).Error
}
