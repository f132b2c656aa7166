package payments

import (
	"context"
	"testing"

	"culinary-booking/database"
	bookingModel "culinary-booking/models/booking"
	paymentModel "culinary-booking/models/payment"
	webhookTypes "culinary-booking/types/webhook"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type recordingMailer struct {
	sent   int
	guests int
}

func (m *recordingMailer) SendBookingConfirmation(b *bookingModel.Booking, guests []bookingModel.BookingGuest) error {
	m.sent++
	m.guests = len(guests)
	return nil
}

func pendingBooking(t *testing.T, db *gorm.DB, guests int, total float64) *bookingModel.Booking {
	t.Helper()
	b := bookingModel.Booking{
		ClassID:        "cls_pasta",
		ClassName:      "Fresh Pasta Workshop",
		CustomerName:   "Lina Haddad",
		CustomerEmail:  "lina@example.com",
		CustomerPhone:  "971501234567",
		PaymentType:    bookingModel.PaymentTypeFullCourse,
		NumberOfGuests: guests,
		SessionsBooked: 4,
		TotalAmount:    total,
		AmountDue:      total,
		Status:         bookingModel.BookingStatusPending,
		Source:         bookingModel.BookingSourceWebsite,
	}
	require.NoError(t, db.Create(&b).Error)
	return &b
}

func checkoutCompletedEvent(eventID, sessionID, bookingID string, cents int64) *webhookTypes.Event {
	return &webhookTypes.Event{
		ID:   eventID,
		Kind: webhookTypes.EventCheckoutCompleted,
		CheckoutSession: &webhookTypes.CheckoutSession{
			ID:            sessionID,
			AmountTotal:   cents,
			Currency:      "usd",
			PaymentIntent: "pi_123",
			PaymentStatus: "paid",
			Metadata:      webhookTypes.Metadata{BookingID: bookingID},
		},
	}
}

func TestCheckoutCompletedConfirmsBooking(t *testing.T) {
	db := testDB(t)
	mailer := &recordingMailer{}
	r := NewReconciler(db, mailer)

	target := pendingBooking(t, db, 2, 350)
	evt := checkoutCompletedEvent("evt_1", "cs_1", "1", 35000)

	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeApplied, result.Outcome)

	var got bookingModel.Booking
	require.NoError(t, db.First(&got, target.ID).Error)
	require.Equal(t, bookingModel.BookingStatusConfirmed, got.Status)
	require.Equal(t, 350.0, got.AmountPaid)
	require.Equal(t, 0.0, got.AmountDue)
	require.Equal(t, "stripe", got.PaymentMethod)
	require.NotNil(t, got.PaidAt)
	require.NotNil(t, got.StripePaymentIntentID)
	require.Equal(t, "pi_123", *got.StripePaymentIntentID)
	require.True(t, got.EmailSent)

	var txns []paymentModel.Transaction
	require.NoError(t, db.Find(&txns).Error)
	require.Len(t, txns, 1)
	require.Equal(t, paymentModel.TransactionTypePayment, txns[0].Type)
	require.Equal(t, 350.0, txns[0].Amount)
	require.Equal(t, "evt_1", txns[0].StripeEventID)

	var guests []bookingModel.BookingGuest
	require.NoError(t, db.Where("booking_id = ?", target.ID).Find(&guests).Error)
	require.Len(t, guests, 2)
	require.Equal(t, "Lina Haddad", guests[0].Name)
	require.NotEqual(t, guests[0].QRToken, guests[1].QRToken)

	require.Equal(t, 1, mailer.sent)
	require.Equal(t, 2, mailer.guests)

	var events []bookingModel.BookingStatusEvent
	require.NoError(t, db.Where("booking_id = ?", target.ID).Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, "webhook", events[0].CreatedBy)
}

func TestCheckoutCompletedReplayIsSkipped(t *testing.T) {
	db := testDB(t)
	mailer := &recordingMailer{}
	r := NewReconciler(db, mailer)

	target := pendingBooking(t, db, 2, 350)
	evt := checkoutCompletedEvent("evt_1", "cs_1", "1", 35000)

	require.Equal(t, OutcomeApplied, r.Process(context.Background(), evt).Outcome)

	// Same event redelivered.
	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeSkipped, result.Outcome)

	// A second event for the same checkout session is also a duplicate.
	evt2 := checkoutCompletedEvent("evt_2", "cs_1", "1", 35000)
	result = r.Process(context.Background(), evt2)
	require.Equal(t, OutcomeSkipped, result.Outcome)

	var txnCount int64
	require.NoError(t, db.Model(&paymentModel.Transaction{}).Count(&txnCount).Error)
	require.EqualValues(t, 1, txnCount)

	var guestCount int64
	require.NoError(t, db.Model(&bookingModel.BookingGuest{}).Where("booking_id = ?", target.ID).Count(&guestCount).Error)
	require.EqualValues(t, 2, guestCount)

	require.Equal(t, 1, mailer.sent)
}

func TestCheckoutCompletedUnknownBooking(t *testing.T) {
	db := testDB(t)
	r := NewReconciler(db, nil)

	evt := checkoutCompletedEvent("evt_1", "cs_1", "999", 35000)
	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeSkipped, result.Outcome)

	var txnCount int64
	require.NoError(t, db.Model(&paymentModel.Transaction{}).Count(&txnCount).Error)
	require.EqualValues(t, 0, txnCount)
}

func TestCheckoutExpiredClearsSessionOnly(t *testing.T) {
	db := testDB(t)
	r := NewReconciler(db, nil)

	target := pendingBooking(t, db, 1, 200)
	sessionID := "cs_exp"
	require.NoError(t, db.Model(target).Update("stripe_checkout_session_id", sessionID).Error)

	evt := &webhookTypes.Event{
		ID:              "evt_exp",
		Kind:            webhookTypes.EventCheckoutExpired,
		CheckoutSession: &webhookTypes.CheckoutSession{ID: sessionID},
	}
	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeApplied, result.Outcome)

	var got bookingModel.Booking
	require.NoError(t, db.First(&got, target.ID).Error)
	require.Nil(t, got.StripeCheckoutSessionID)
	require.Equal(t, bookingModel.BookingStatusPending, got.Status)

	// Expiry for an unknown session leaves no trace.
	result = r.Process(context.Background(), evt)
	require.Equal(t, OutcomeSkipped, result.Outcome)
}

func TestPaymentIntentSucceededConfirmsWithoutGuests(t *testing.T) {
	db := testDB(t)
	mailer := &recordingMailer{}
	r := NewReconciler(db, mailer)

	target := pendingBooking(t, db, 2, 350)
	intent := "pi_direct"
	require.NoError(t, db.Model(target).Update("stripe_payment_intent_id", intent).Error)

	evt := &webhookTypes.Event{
		ID:            "evt_pi",
		Kind:          webhookTypes.EventPaymentIntentSucceeded,
		PaymentIntent: &webhookTypes.PaymentIntent{ID: intent, Amount: 35000, Currency: "usd", Status: "succeeded"},
	}
	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeApplied, result.Outcome)

	var got bookingModel.Booking
	require.NoError(t, db.First(&got, target.ID).Error)
	require.Equal(t, bookingModel.BookingStatusConfirmed, got.Status)
	require.Equal(t, 350.0, got.AmountPaid)

	// Only the checkout-completed path creates guest rows and sends email.
	var guestCount int64
	require.NoError(t, db.Model(&bookingModel.BookingGuest{}).Count(&guestCount).Error)
	require.EqualValues(t, 0, guestCount)
	require.Equal(t, 0, mailer.sent)

	// A repeat delivery finds the booking already paid.
	result = r.Process(context.Background(), evt)
	require.Equal(t, OutcomeSkipped, result.Outcome)
}

func TestPaymentIntentFailedRecordsTransactionOnly(t *testing.T) {
	db := testDB(t)
	r := NewReconciler(db, nil)

	target := pendingBooking(t, db, 1, 200)
	intent := "pi_fail"
	require.NoError(t, db.Model(target).Update("stripe_payment_intent_id", intent).Error)

	evt := &webhookTypes.Event{
		ID:            "evt_fail",
		Kind:          webhookTypes.EventPaymentIntentFailed,
		PaymentIntent: &webhookTypes.PaymentIntent{ID: intent, Amount: 20000, Currency: "usd", Status: "requires_payment_method"},
	}
	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeApplied, result.Outcome)

	var got bookingModel.Booking
	require.NoError(t, db.First(&got, target.ID).Error)
	require.Equal(t, bookingModel.BookingStatusPending, got.Status)

	var txns []paymentModel.Transaction
	require.NoError(t, db.Find(&txns).Error)
	require.Len(t, txns, 1)
	require.Equal(t, paymentModel.TransactionTypeFailed, txns[0].Type)
	require.NotNil(t, txns[0].BookingID)
	require.Equal(t, target.ID, *txns[0].BookingID)
}

func TestChargeRefundedFullCancelsBooking(t *testing.T) {
	db := testDB(t)
	r := NewReconciler(db, nil)

	target := pendingBooking(t, db, 1, 200)
	intent := "pi_refund"
	require.NoError(t, db.Model(target).Updates(map[string]interface{}{
		"stripe_payment_intent_id": intent,
		"status":                   bookingModel.BookingStatusConfirmed,
		"amount_paid":              200.0,
		"amount_due":               0.0,
	}).Error)

	evt := &webhookTypes.Event{
		ID:   "evt_refund",
		Kind: webhookTypes.EventChargeRefunded,
		Charge: &webhookTypes.Charge{
			ID:             "ch_1",
			Amount:         20000,
			AmountRefunded: 20000,
			Currency:       "usd",
			PaymentIntent:  intent,
			Refunded:       true,
		},
	}
	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeApplied, result.Outcome)

	var got bookingModel.Booking
	require.NoError(t, db.First(&got, target.ID).Error)
	require.Equal(t, bookingModel.BookingStatusCancelled, got.Status)
	require.Equal(t, 200.0, got.RefundAmount)
	require.NotNil(t, got.RefundedAt)

	var txns []paymentModel.Transaction
	require.NoError(t, db.Find(&txns).Error)
	require.Len(t, txns, 1)
	require.Equal(t, paymentModel.TransactionTypeRefund, txns[0].Type)
}

func TestChargeRefundedPartialKeepsBookingConfirmed(t *testing.T) {
	db := testDB(t)
	r := NewReconciler(db, nil)

	target := pendingBooking(t, db, 1, 200)
	intent := "pi_partial"
	require.NoError(t, db.Model(target).Updates(map[string]interface{}{
		"stripe_payment_intent_id": intent,
		"status":                   bookingModel.BookingStatusConfirmed,
		"amount_paid":              200.0,
		"amount_due":               0.0,
	}).Error)

	evt := &webhookTypes.Event{
		ID:   "evt_partial",
		Kind: webhookTypes.EventChargeRefunded,
		Charge: &webhookTypes.Charge{
			ID:             "ch_2",
			Amount:         20000,
			AmountRefunded: 5000,
			Currency:       "usd",
			PaymentIntent:  intent,
		},
	}
	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeApplied, result.Outcome)

	var got bookingModel.Booking
	require.NoError(t, db.First(&got, target.ID).Error)
	require.Equal(t, bookingModel.BookingStatusConfirmed, got.Status)
	require.Equal(t, 50.0, got.RefundAmount)

	var txns []paymentModel.Transaction
	require.NoError(t, db.Find(&txns).Error)
	require.Len(t, txns, 1)
	require.Equal(t, paymentModel.TransactionTypePartialRefund, txns[0].Type)
}

func TestPaymentLinkCheckoutSettlesSingleUseLink(t *testing.T) {
	db := testDB(t)
	r := NewReconciler(db, nil)

	link := paymentModel.PaymentLink{
		Token:     "tok_link",
		Amount:    120,
		SingleUse: true,
		MaxUses:   1,
		Status:    paymentModel.PaymentLinkStatusActive,
	}
	require.NoError(t, db.Create(&link).Error)

	evt := &webhookTypes.Event{
		ID:   "evt_link",
		Kind: webhookTypes.EventCheckoutCompleted,
		CheckoutSession: &webhookTypes.CheckoutSession{
			ID:          "cs_link",
			AmountTotal: 12000,
			Currency:    "usd",
			Metadata:    webhookTypes.Metadata{PaymentLinkID: "1"},
		},
	}
	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeApplied, result.Outcome)

	var got paymentModel.PaymentLink
	require.NoError(t, db.First(&got, link.ID).Error)
	require.Equal(t, 1, got.UseCount)
	require.Equal(t, paymentModel.PaymentLinkStatusPaid, got.Status)
	require.NotNil(t, got.QRToken)
	require.NotNil(t, got.PaidAt)

	var txns []paymentModel.Transaction
	require.NoError(t, db.Find(&txns).Error)
	require.Len(t, txns, 1)
	require.NotNil(t, txns[0].PaymentLinkID)
	require.Equal(t, link.ID, *txns[0].PaymentLinkID)
}

func TestPaymentLinkCheckoutDepositThenFull(t *testing.T) {
	db := testDB(t)
	r := NewReconciler(db, nil)

	sb := paymentModel.ServiceBooking{
		CustomerName:  "Omar",
		CustomerPhone: "97150000000",
		ServiceName:   "Private Dinner",
		TotalAmount:   1000,
		DepositAmount: 300,
		PaymentStatus: paymentModel.ServicePaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(&sb).Error)

	link := paymentModel.PaymentLink{
		Token:            "tok_sb",
		ServiceBookingID: &sb.ID,
		Amount:           300,
		SingleUse:        false,
		MaxUses:          0,
		Status:           paymentModel.PaymentLinkStatusActive,
	}
	require.NoError(t, db.Create(&link).Error)

	deposit := &webhookTypes.Event{
		ID:   "evt_dep",
		Kind: webhookTypes.EventCheckoutCompleted,
		CheckoutSession: &webhookTypes.CheckoutSession{
			ID:          "cs_dep",
			AmountTotal: 30000,
			Metadata:    webhookTypes.Metadata{PaymentLinkID: "1"},
		},
	}
	require.Equal(t, OutcomeApplied, r.Process(context.Background(), deposit).Outcome)

	var gotSB paymentModel.ServiceBooking
	require.NoError(t, db.First(&gotSB, sb.ID).Error)
	require.Equal(t, paymentModel.ServicePaymentStatusDepositPaid, gotSB.PaymentStatus)
	require.Equal(t, 300.0, gotSB.AmountPaid)

	balance := &webhookTypes.Event{
		ID:   "evt_bal",
		Kind: webhookTypes.EventCheckoutCompleted,
		CheckoutSession: &webhookTypes.CheckoutSession{
			ID:          "cs_bal",
			AmountTotal: 70000,
			Metadata:    webhookTypes.Metadata{PaymentLinkID: "1"},
		},
	}
	require.Equal(t, OutcomeApplied, r.Process(context.Background(), balance).Outcome)

	require.NoError(t, db.First(&gotSB, sb.ID).Error)
	require.Equal(t, paymentModel.ServicePaymentStatusPaid, gotSB.PaymentStatus)
	require.Equal(t, 1000.0, gotSB.AmountPaid)
	require.NotNil(t, gotSB.PaidAt)
}

func TestInvoicePaidMarksInvoiceAndBooking(t *testing.T) {
	db := testDB(t)
	r := NewReconciler(db, nil)

	target := pendingBooking(t, db, 1, 500)
	stripeID := "in_123"
	inv := paymentModel.Invoice{
		Number:          "INV-0001",
		BookingID:       &target.ID,
		Amount:          500,
		Status:          "open",
		StripeInvoiceID: &stripeID,
	}
	require.NoError(t, db.Create(&inv).Error)

	evt := &webhookTypes.Event{
		ID:      "evt_inv",
		Kind:    webhookTypes.EventInvoicePaid,
		Invoice: &webhookTypes.Invoice{ID: stripeID, AmountPaid: 50000, Currency: "usd"},
	}
	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeApplied, result.Outcome)

	var gotInv paymentModel.Invoice
	require.NoError(t, db.First(&gotInv, inv.ID).Error)
	require.Equal(t, "paid", gotInv.Status)
	require.NotNil(t, gotInv.PaidAt)

	var gotBooking bookingModel.Booking
	require.NoError(t, db.First(&gotBooking, target.ID).Error)
	require.Equal(t, bookingModel.BookingStatusConfirmed, gotBooking.Status)
	require.Equal(t, 500.0, gotBooking.AmountPaid)
}

func TestUnknownEventKindIsIgnored(t *testing.T) {
	db := testDB(t)
	r := NewReconciler(db, nil)

	evt := &webhookTypes.Event{ID: "evt_x", Kind: "customer.created"}
	result := r.Process(context.Background(), evt)
	require.Equal(t, OutcomeIgnored, result.Outcome)
}
