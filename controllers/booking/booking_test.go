package booking

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"culinary-booking/database"
	bookingModel "culinary-booking/models/booking"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupCheckInApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	ctrl := NewBookingController(db, nil, nil, nil)
	app := fiber.New()
	app.Post("/checkin", ctrl.CheckIn)
	return app, db
}

func confirmedBookingWithGuests(t *testing.T, db *gorm.DB, status bookingModel.BookingStatus) *bookingModel.Booking {
	t.Helper()
	b := bookingModel.Booking{
		ClassID:        "c1",
		ClassName:      "Fresh Pasta Workshop",
		CustomerName:   "Lina Haddad",
		CustomerEmail:  "lina@example.com",
		CustomerPhone:  "971501234567",
		NumberOfGuests: 2,
		TotalAmount:    350,
		Status:         status,
		Source:         bookingModel.BookingSourceWebsite,
	}
	require.NoError(t, db.Create(&b).Error)
	guests := []bookingModel.BookingGuest{
		{BookingID: b.ID, Name: "Lina Haddad", QRToken: "token-guest-1"},
		{BookingID: b.ID, Name: "Lina Haddad – Guest 2", QRToken: "token-guest-2"},
	}
	require.NoError(t, db.Create(&guests).Error)
	return &b
}

func postCheckIn(t *testing.T, app *fiber.App, token string) (int, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"qr_token": token})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/checkin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp.StatusCode, decoded
}

func TestCheckInMarksGuestAndBooking(t *testing.T) {
	app, db := setupCheckInApp(t)
	target := confirmedBookingWithGuests(t, db, bookingModel.BookingStatusConfirmed)

	status, _ := postCheckIn(t, app, "token-guest-1")
	require.Equal(t, fiber.StatusOK, status)

	var first bookingModel.BookingGuest
	require.NoError(t, db.Where("qr_token = ?", "token-guest-1").First(&first).Error)
	require.NotNil(t, first.CheckedInAt)

	// One guest still outstanding, so the booking is not fully arrived yet.
	var got bookingModel.Booking
	require.NoError(t, db.First(&got, target.ID).Error)
	require.Nil(t, got.CheckedInAt)

	status, _ = postCheckIn(t, app, "token-guest-2")
	require.Equal(t, fiber.StatusOK, status)

	require.NoError(t, db.First(&got, target.ID).Error)
	require.NotNil(t, got.CheckedInAt)
}

func TestCheckInRejectsSecondScan(t *testing.T) {
	app, db := setupCheckInApp(t)
	confirmedBookingWithGuests(t, db, bookingModel.BookingStatusConfirmed)

	status, _ := postCheckIn(t, app, "token-guest-1")
	require.Equal(t, fiber.StatusOK, status)

	status, body := postCheckIn(t, app, "token-guest-1")
	require.Equal(t, fiber.StatusConflict, status)
	msg, ok := body["message"].(string)
	require.True(t, ok)
	require.Contains(t, msg, "already checked in")
}

func TestCheckInRequiresConfirmedBooking(t *testing.T) {
	app, db := setupCheckInApp(t)
	confirmedBookingWithGuests(t, db, bookingModel.BookingStatusPending)

	status, _ := postCheckIn(t, app, "token-guest-1")
	require.Equal(t, fiber.StatusConflict, status)

	var guest bookingModel.BookingGuest
	require.NoError(t, db.Where("qr_token = ?", "token-guest-1").First(&guest).Error)
	require.Nil(t, guest.CheckedInAt)
}

func TestCheckInUnknownToken(t *testing.T) {
	app, _ := setupCheckInApp(t)

	status, _ := postCheckIn(t, app, "no-such-token")
	require.Equal(t, fiber.StatusNotFound, status)
}

func TestCancelGuardsFinalStates(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	ctrl := NewBookingController(db, nil, nil, nil)
	app := fiber.New()
	app.Post("/bookings/:id/cancel", ctrl.Cancel)

	cancelled := bookingModel.Booking{
		ClassID: "c1", ClassName: "Fresh Pasta", CustomerName: "Omar",
		CustomerEmail: "omar@example.com", CustomerPhone: "971502222222",
		NumberOfGuests: 1, TotalAmount: 175,
		Status: bookingModel.BookingStatusCancelled, Source: bookingModel.BookingSourceWebsite,
	}
	require.NoError(t, db.Create(&cancelled).Error)

	req := httptest.NewRequest("POST", "/bookings/1/cancel", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	pending := bookingModel.Booking{
		ClassID: "c1", ClassName: "Fresh Pasta", CustomerName: "Sara",
		CustomerEmail: "sara@example.com", CustomerPhone: "971503333333",
		NumberOfGuests: 1, TotalAmount: 175,
		Status: bookingModel.BookingStatusPending, Source: bookingModel.BookingSourceWebsite,
	}
	require.NoError(t, db.Create(&pending).Error)

	req = httptest.NewRequest("POST", "/bookings/2/cancel", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got bookingModel.Booking
	require.NoError(t, db.First(&got, pending.ID).Error)
	require.Equal(t, bookingModel.BookingStatusCancelled, got.Status)

	var events []bookingModel.BookingStatusEvent
	require.NoError(t, db.Where("booking_id = ?", pending.ID).Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, "system", events[0].CreatedBy)
}
