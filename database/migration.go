package database

import (
	bookingModel "culinary-booking/models/booking"
	leadModel "culinary-booking/models/lead"
	logModel "culinary-booking/models/log"
	paymentModel "culinary-booking/models/payment"
	whatsappModel "culinary-booking/models/whatsapp"

	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for every model. The unique index on
// payment_transactions.stripe_event_id comes from the model tag and is the
// hard backstop for webhook redelivery: a duplicate provider event cannot
// insert a second audit row even if two deliveries race past the
// application-level dedupe check.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&bookingModel.Booking{},
		&bookingModel.BookingGuest{},
		&bookingModel.BookingStatusEvent{},
		&paymentModel.Transaction{},
		&paymentModel.PaymentLink{},
		&paymentModel.Invoice{},
		&paymentModel.ServiceBooking{},
		&whatsappModel.BookingLog{},
		&whatsappModel.CashAlert{},
		&leadModel.Lead{},
		&logModel.Log{},
	)
}
