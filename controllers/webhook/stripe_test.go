package webhook

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"culinary-booking/database"
	bookingModel "culinary-booking/models/booking"
	"culinary-booking/services/payments"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "whsec_test"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	ctrl := NewStripeWebhookController(payments.NewReconciler(db, nil), testSecret, nil)
	app := fiber.New()
	app.Post("/webhooks/stripe", ctrl.Handle)
	return app, db
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, signature string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	return resp.StatusCode, decoded
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := postWebhook(t, app, []byte(`{}`), "")
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "No signature", body["error"])
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	app, _ := newTestApp(t)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	badSig := payments.SignPayload(payload, "whsec_wrong", time.Now())

	status, body := postWebhook(t, app, payload, badSig)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "Invalid signature", body["error"])
}

func TestWebhookMalformedPayloadAfterValidSignature(t *testing.T) {
	app, _ := newTestApp(t)

	payload := []byte(`{"not":"an event"}`)
	sig := payments.SignPayload(payload, testSecret, time.Now())

	status, body := postWebhook(t, app, payload, sig)
	require.Equal(t, fiber.StatusInternalServerError, status)
	require.Equal(t, "Webhook processing failed", body["error"])
}

func TestWebhookAcksAppliedEvent(t *testing.T) {
	app, db := newTestApp(t)

	target := bookingModel.Booking{
		ClassID:        "c1",
		ClassName:      "Fresh Pasta Workshop",
		CustomerName:   "Lina",
		CustomerEmail:  "lina@example.com",
		CustomerPhone:  "971501234567",
		NumberOfGuests: 1,
		TotalAmount:    350,
		AmountDue:      350,
		Status:         bookingModel.BookingStatusPending,
		Source:         bookingModel.BookingSourceWebsite,
	}
	require.NoError(t, db.Create(&target).Error)

	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {
			"id": "cs_1",
			"amount_total": 35000,
			"currency": "usd",
			"payment_intent": "pi_1",
			"payment_status": "paid",
			"metadata": {"booking_id": "1"}
		}}
	}`)
	sig := payments.SignPayload(payload, testSecret, time.Now())

	status, body := postWebhook(t, app, payload, sig)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["received"])

	var got bookingModel.Booking
	require.NoError(t, db.First(&got, target.ID).Error)
	require.Equal(t, bookingModel.BookingStatusConfirmed, got.Status)
	require.Equal(t, 350.0, got.AmountPaid)
}

func TestWebhookAcksUnknownEventKind(t *testing.T) {
	app, _ := newTestApp(t)

	payload := []byte(`{"id":"evt_2","type":"customer.created","data":{"object":{}}}`)
	sig := payments.SignPayload(payload, testSecret, time.Now())

	status, body := postWebhook(t, app, payload, sig)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["received"])
}
