package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"culinary-booking/logger"
	bookingModel "culinary-booking/models/booking"
	paymentModel "culinary-booking/models/payment"
	"culinary-booking/services/booking_event"
	webhookTypes "culinary-booking/types/webhook"
	"culinary-booking/utils"

	"gorm.io/gorm"
)

// Outcome classifies what the reconciler did with one event.
type Outcome string

const (
	// OutcomeApplied means the event changed at least one record.
	OutcomeApplied Outcome = "applied"
	// OutcomeSkipped means the event was recognized but intentionally left
	// no trace: duplicate delivery, or a referenced entity that no longer
	// exists.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeIgnored means the event kind is outside the handled set.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeFailed means a database error interrupted processing.
	OutcomeFailed Outcome = "failed"
)

// Result is the explicit per-event outcome. The webhook endpoint acks
// everything except Failed the same way, but logs and metrics see the
// difference.
type Result struct {
	Outcome Outcome
	Reason  string
	Err     error
}

func applied() Result              { return Result{Outcome: OutcomeApplied} }
func skipped(reason string) Result { return Result{Outcome: OutcomeSkipped, Reason: reason} }
func ignored() Result              { return Result{Outcome: OutcomeIgnored} }
func failed(err error) Result      { return Result{Outcome: OutcomeFailed, Err: err} }

// Mailer sends the guest confirmation email after a booking is paid.
type Mailer interface {
	SendBookingConfirmation(booking *bookingModel.Booking, guests []bookingModel.BookingGuest) error
}

// Reconciler applies payment-provider events to internal records. All
// database writes for one event happen inside a single transaction, so a
// partially applied event cannot be observed. Email delivery stays outside
// the transaction: a failed email is logged and never unwinds the booking.
type Reconciler struct {
	db     *gorm.DB
	mailer Mailer
}

func NewReconciler(db *gorm.DB, mailer Mailer) *Reconciler {
	return &Reconciler{db: db, mailer: mailer}
}

// Process dispatches one parsed event to its handler.
func (r *Reconciler) Process(ctx context.Context, evt *webhookTypes.Event) Result {
	db := r.db.WithContext(ctx)

	switch evt.Kind {
	case webhookTypes.EventCheckoutCompleted:
		return r.handleCheckoutCompleted(db, evt)
	case webhookTypes.EventCheckoutExpired:
		return r.handleCheckoutExpired(db, evt)
	case webhookTypes.EventPaymentIntentSucceeded:
		return r.handlePaymentIntentSucceeded(db, evt)
	case webhookTypes.EventPaymentIntentFailed:
		return r.handlePaymentIntentFailed(db, evt)
	case webhookTypes.EventInvoicePaid:
		return r.handleInvoicePaid(db, evt)
	case webhookTypes.EventChargeRefunded:
		return r.handleChargeRefunded(db, evt)
	default:
		return ignored()
	}
}

// isDuplicate reports whether a transaction row already exists for this
// provider event or checkout session. The unique index on stripe_event_id
// is the backstop when two deliveries race past this check.
func (r *Reconciler) isDuplicate(db *gorm.DB, eventID string, checkoutSessionID string) (bool, error) {
	query := db.Model(&paymentModel.Transaction{}).Where("stripe_event_id = ?", eventID)
	if checkoutSessionID != "" {
		query = db.Model(&paymentModel.Transaction{}).
			Where("stripe_event_id = ? OR (type = ? AND stripe_checkout_session_id = ?)",
				eventID, paymentModel.TransactionTypePayment, checkoutSessionID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Reconciler) handleCheckoutCompleted(db *gorm.DB, evt *webhookTypes.Event) Result {
	cs := evt.CheckoutSession

	dup, err := r.isDuplicate(db, evt.ID, cs.ID)
	if err != nil {
		return failed(err)
	}
	if dup {
		logger.Warning(fmt.Sprintf("Duplicate checkout.session.completed delivery for session %s, skipping", cs.ID))
		return skipped("duplicate delivery")
	}

	switch {
	case cs.Metadata.BookingID != "":
		return r.settleBookingCheckout(db, evt)
	case cs.Metadata.PaymentLinkID != "":
		return r.settlePaymentLinkCheckout(db, evt)
	default:
		logger.Warning(fmt.Sprintf("Checkout session %s carries no booking or payment link reference", cs.ID))
		return skipped("no reference metadata")
	}
}

// settleBookingCheckout marks the booking paid, writes the audit
// transaction, creates per-guest QR rows, and finally sends the
// confirmation email.
func (r *Reconciler) settleBookingCheckout(db *gorm.DB, evt *webhookTypes.Event) Result {
	cs := evt.CheckoutSession

	bookingID, err := strconv.ParseUint(cs.Metadata.BookingID, 10, 64)
	if err != nil {
		logger.Warning("Checkout session " + cs.ID + " carries malformed booking_id metadata")
		return skipped("malformed booking_id")
	}

	var target bookingModel.Booking
	if err := db.First(&target, uint(bookingID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warning(fmt.Sprintf("Booking %d not found for checkout session %s", bookingID, cs.ID))
			return skipped("booking not found")
		}
		return failed(err)
	}

	amount := utils.CentsToAmount(cs.AmountTotal)
	now := time.Now()

	var freshGuests []bookingModel.BookingGuest
	err = db.Transaction(func(tx *gorm.DB) error {
		target.Status = bookingModel.BookingStatusConfirmed
		target.AmountPaid = amount
		target.AmountDue = target.TotalAmount - amount
		if target.AmountDue < 0 {
			target.AmountDue = 0
		}
		target.PaymentMethod = "stripe"
		target.PaidAt = &now
		if cs.PaymentIntent != "" {
			pi := cs.PaymentIntent
			target.StripePaymentIntentID = &pi
		}
		if err := tx.Save(&target).Error; err != nil {
			return err
		}

		if err := booking_event.RecordStatusEvent(tx, target.ID, bookingModel.BookingStatusConfirmed, "webhook"); err != nil {
			return err
		}

		guests, err := createGuestRows(tx, &target)
		if err != nil {
			return err
		}
		freshGuests = guests

		return createTransaction(tx, paymentModel.Transaction{
			BookingID:               &target.ID,
			Type:                    paymentModel.TransactionTypePayment,
			Amount:                  amount,
			Currency:                orDefault(cs.Currency, "usd"),
			Status:                  "completed",
			StripeEventID:           evt.ID,
			StripeCheckoutSessionID: &cs.ID,
			StripePaymentIntentID:   target.StripePaymentIntentID,
		})
	})
	if err != nil {
		return failed(err)
	}

	logger.Success(fmt.Sprintf("Booking %d confirmed via checkout session %s", target.ID, cs.ID))
	r.sendConfirmation(db, &target, freshGuests)

	return applied()
}

func (r *Reconciler) settlePaymentLinkCheckout(db *gorm.DB, evt *webhookTypes.Event) Result {
	cs := evt.CheckoutSession

	linkID, err := strconv.ParseUint(cs.Metadata.PaymentLinkID, 10, 64)
	if err != nil {
		logger.Warning("Checkout session " + cs.ID + " carries malformed payment_link_id metadata")
		return skipped("malformed payment_link_id")
	}

	var link paymentModel.PaymentLink
	if err := db.First(&link, uint(linkID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warning(fmt.Sprintf("Payment link %d not found for checkout session %s", linkID, cs.ID))
			return skipped("payment link not found")
		}
		return failed(err)
	}

	amount := utils.CentsToAmount(cs.AmountTotal)
	now := time.Now()

	var linkedBooking *bookingModel.Booking
	var freshGuests []bookingModel.BookingGuest
	err = db.Transaction(func(tx *gorm.DB) error {
		link.UseCount++
		qr := utils.NewQRToken()
		link.QRToken = &qr
		if link.IsExhausted() {
			link.Status = paymentModel.PaymentLinkStatusPaid
			link.PaidAt = &now
		}
		if err := tx.Save(&link).Error; err != nil {
			return err
		}

		if link.ServiceBookingID != nil {
			var sb paymentModel.ServiceBooking
			if err := tx.First(&sb, *link.ServiceBookingID).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				logger.Warning(fmt.Sprintf("Service booking %d referenced by link %d not found", *link.ServiceBookingID, link.ID))
			} else {
				sb.AmountPaid += amount
				sb.Status = "confirmed"
				// Full versus deposit is decided by the running total, not
				// by which link was paid.
				if sb.AmountPaid >= sb.TotalAmount {
					sb.PaymentStatus = paymentModel.ServicePaymentStatusPaid
					sb.PaidAt = &now
				} else {
					sb.PaymentStatus = paymentModel.ServicePaymentStatusDepositPaid
				}
				if err := tx.Save(&sb).Error; err != nil {
					return err
				}
			}
		}

		if link.InvoiceID != nil {
			if err := tx.Model(&paymentModel.Invoice{}).Where("id = ?", *link.InvoiceID).
				Updates(map[string]interface{}{"status": "paid", "paid_at": now}).Error; err != nil {
				return err
			}
		}

		if link.BookingID != nil {
			var target bookingModel.Booking
			if err := tx.First(&target, *link.BookingID).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				logger.Warning(fmt.Sprintf("Booking %d referenced by link %d not found", *link.BookingID, link.ID))
			} else {
				target.Status = bookingModel.BookingStatusConfirmed
				target.AmountPaid += amount
				target.AmountDue = target.TotalAmount - target.AmountPaid
				if target.AmountDue < 0 {
					target.AmountDue = 0
				}
				target.PaymentMethod = "stripe"
				target.PaidAt = &now
				if err := tx.Save(&target).Error; err != nil {
					return err
				}
				if err := booking_event.RecordStatusEvent(tx, target.ID, bookingModel.BookingStatusConfirmed, "webhook"); err != nil {
					return err
				}
				guests, err := createGuestRows(tx, &target)
				if err != nil {
					return err
				}
				linkedBooking = &target
				freshGuests = guests
			}
		}

		return createTransaction(tx, paymentModel.Transaction{
			BookingID:               link.BookingID,
			PaymentLinkID:           &link.ID,
			InvoiceID:               link.InvoiceID,
			ServiceBookingID:        link.ServiceBookingID,
			Type:                    paymentModel.TransactionTypePayment,
			Amount:                  amount,
			Currency:                orDefault(cs.Currency, "usd"),
			Status:                  "completed",
			StripeEventID:           evt.ID,
			StripeCheckoutSessionID: &cs.ID,
		})
	})
	if err != nil {
		return failed(err)
	}

	logger.Success(fmt.Sprintf("Payment link %d settled via checkout session %s", link.ID, cs.ID))
	if linkedBooking != nil {
		r.sendConfirmation(db, linkedBooking, freshGuests)
	}

	return applied()
}

// handleCheckoutExpired clears the stored session reference so a retry can
// create a fresh checkout. The booking itself stays in whatever state it
// was; expiry is not a cancellation.
func (r *Reconciler) handleCheckoutExpired(db *gorm.DB, evt *webhookTypes.Event) Result {
	cs := evt.CheckoutSession

	result := db.Model(&bookingModel.Booking{}).
		Where("stripe_checkout_session_id = ?", cs.ID).
		Update("stripe_checkout_session_id", nil)
	if result.Error != nil {
		return failed(result.Error)
	}
	if result.RowsAffected == 0 {
		return skipped("no booking for expired session")
	}

	logger.Info("Cleared expired checkout session " + cs.ID)
	return applied()
}

// handlePaymentIntentSucceeded is a best-effort secondary confirmation for
// out-of-order delivery relative to checkout.session.completed. It never
// creates guest rows or sends email; only the checkout-completed path does
// that.
func (r *Reconciler) handlePaymentIntentSucceeded(db *gorm.DB, evt *webhookTypes.Event) Result {
	pi := evt.PaymentIntent

	var target bookingModel.Booking
	err := db.Where("stripe_payment_intent_id = ?", pi.ID).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return skipped("no booking for payment intent")
	}
	if err != nil {
		return failed(err)
	}
	if target.PaidAt != nil && target.Status == bookingModel.BookingStatusConfirmed {
		return skipped("booking already paid")
	}

	amount := utils.CentsToAmount(pi.Amount)
	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		target.Status = bookingModel.BookingStatusConfirmed
		target.AmountPaid = amount
		target.AmountDue = target.TotalAmount - amount
		if target.AmountDue < 0 {
			target.AmountDue = 0
		}
		target.PaymentMethod = "stripe"
		target.PaidAt = &now
		if err := tx.Save(&target).Error; err != nil {
			return err
		}
		return booking_event.RecordStatusEvent(tx, target.ID, bookingModel.BookingStatusConfirmed, "webhook")
	})
	if err != nil {
		return failed(err)
	}

	logger.Success(fmt.Sprintf("Booking %d confirmed via payment intent %s", target.ID, pi.ID))
	return applied()
}

// handlePaymentIntentFailed records a failed transaction row only; the
// booking keeps its state so the customer can retry.
func (r *Reconciler) handlePaymentIntentFailed(db *gorm.DB, evt *webhookTypes.Event) Result {
	pi := evt.PaymentIntent

	dup, err := r.isDuplicate(db, evt.ID, "")
	if err != nil {
		return failed(err)
	}
	if dup {
		return skipped("duplicate delivery")
	}

	var bookingID *uint
	var target bookingModel.Booking
	if err := db.Where("stripe_payment_intent_id = ?", pi.ID).First(&target).Error; err == nil {
		bookingID = &target.ID
	}

	err = createTransaction(db, paymentModel.Transaction{
		BookingID:             bookingID,
		Type:                  paymentModel.TransactionTypeFailed,
		Amount:                utils.CentsToAmount(pi.Amount),
		Currency:              orDefault(pi.Currency, "usd"),
		Status:                "failed",
		StripeEventID:         evt.ID,
		StripePaymentIntentID: &pi.ID,
	})
	if err != nil {
		return failed(err)
	}

	logger.Warning("Recorded failed payment intent " + pi.ID)
	return applied()
}

func (r *Reconciler) handleInvoicePaid(db *gorm.DB, evt *webhookTypes.Event) Result {
	inv := evt.Invoice
	now := time.Now()

	var internal paymentModel.Invoice
	err := db.Where("stripe_invoice_id = ?", inv.ID).First(&internal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return skipped("no internal invoice")
	}
	if err != nil {
		return failed(err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		internal.Status = "paid"
		internal.PaidAt = &now
		if err := tx.Save(&internal).Error; err != nil {
			return err
		}

		if internal.BookingID != nil {
			var target bookingModel.Booking
			if err := tx.First(&target, *internal.BookingID).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				return nil
			}
			target.Status = bookingModel.BookingStatusConfirmed
			target.AmountPaid = target.TotalAmount
			target.AmountDue = 0
			target.PaidAt = &now
			if err := tx.Save(&target).Error; err != nil {
				return err
			}
			return booking_event.RecordStatusEvent(tx, target.ID, bookingModel.BookingStatusConfirmed, "webhook")
		}
		return nil
	})
	if err != nil {
		return failed(err)
	}

	logger.Success("Invoice " + internal.Number + " marked paid")
	return applied()
}

// handleChargeRefunded records the refund and cancels the booking only if
// the refund covers the full original amount; partial refunds leave the
// booking confirmed.
func (r *Reconciler) handleChargeRefunded(db *gorm.DB, evt *webhookTypes.Event) Result {
	ch := evt.Charge

	dup, err := r.isDuplicate(db, evt.ID, "")
	if err != nil {
		return failed(err)
	}
	if dup {
		return skipped("duplicate delivery")
	}

	var target bookingModel.Booking
	err = db.Where("stripe_payment_intent_id = ?", ch.PaymentIntent).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warning("No booking found for refunded charge " + ch.ID)
		return skipped("no booking for charge")
	}
	if err != nil {
		return failed(err)
	}

	refundAmount := utils.CentsToAmount(ch.AmountRefunded)
	fullRefund := refundAmount >= target.TotalAmount
	now := time.Now()

	err = db.Transaction(func(tx *gorm.DB) error {
		target.RefundAmount = refundAmount
		target.RefundedAt = &now
		if fullRefund {
			target.Status = bookingModel.BookingStatusCancelled
		}
		if err := tx.Save(&target).Error; err != nil {
			return err
		}

		if fullRefund {
			if err := booking_event.RecordStatusEvent(tx, target.ID, bookingModel.BookingStatusCancelled, "webhook"); err != nil {
				return err
			}
		}

		txnType := paymentModel.TransactionTypeRefund
		if !fullRefund {
			txnType = paymentModel.TransactionTypePartialRefund
		}
		return createTransaction(tx, paymentModel.Transaction{
			BookingID:             &target.ID,
			Type:                  txnType,
			Amount:                refundAmount,
			Currency:              orDefault(ch.Currency, "usd"),
			Status:                "completed",
			StripeEventID:         evt.ID,
			StripePaymentIntentID: &ch.PaymentIntent,
		})
	})
	if err != nil {
		return failed(err)
	}

	logger.Success(fmt.Sprintf("Recorded refund of %.2f for booking %d", refundAmount, target.ID))
	return applied()
}

// createGuestRows creates one row per seat with a fresh QR token, unless
// rows already exist (a replayed confirmation must not mint new tokens).
// The primary attendee gets the first row under their own name.
func createGuestRows(tx *gorm.DB, target *bookingModel.Booking) ([]bookingModel.BookingGuest, error) {
	var existing int64
	if err := tx.Model(&bookingModel.BookingGuest{}).Where("booking_id = ?", target.ID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, nil
	}

	guests := make([]bookingModel.BookingGuest, 0, target.NumberOfGuests)
	for i := 0; i < target.NumberOfGuests; i++ {
		name := target.CustomerName
		if i > 0 {
			name = fmt.Sprintf("%s – Guest %d", target.CustomerName, i+1)
		}
		guests = append(guests, bookingModel.BookingGuest{
			BookingID: target.ID,
			Name:      name,
			QRToken:   utils.NewQRToken(),
		})
	}
	if err := tx.Create(&guests).Error; err != nil {
		return nil, err
	}
	return guests, nil
}

func createTransaction(tx *gorm.DB, txn paymentModel.Transaction) error {
	return tx.Create(&txn).Error
}

// sendConfirmation delivers the confirmation email and flips the
// email-sent flag. Delivery failure is logged only; the booking stays
// confirmed either way.
func (r *Reconciler) sendConfirmation(db *gorm.DB, target *bookingModel.Booking, guests []bookingModel.BookingGuest) {
	if r.mailer == nil || target.EmailSent {
		return
	}

	if err := r.mailer.SendBookingConfirmation(target, guests); err != nil {
		logger.Error(fmt.Sprintf("Failed to send confirmation email for booking %d", target.ID), err)
		return
	}

	if err := db.Model(target).Update("email_sent", true).Error; err != nil {
		logger.Error(fmt.Sprintf("Failed to flag confirmation email for booking %d", target.ID), err)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
