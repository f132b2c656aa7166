package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"culinary-booking/database"
	"culinary-booking/httpServices/cms"
	bookingModel "culinary-booking/models/booking"
	whatsappModel "culinary-booking/models/whatsapp"
	botTypes "culinary-booking/types/bot"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeCatalog struct {
	classes    map[string]*cms.Class
	listErr    error
	decrements []string
}

func (f *fakeCatalog) ListClasses(ctx context.Context, category string) ([]cms.Class, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []cms.Class
	for _, cls := range f.classes {
		if category == "" || cls.Category == category {
			out = append(out, *cls)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetClass(ctx context.Context, id string) (*cms.Class, error) {
	cls, ok := f.classes[id]
	if !ok {
		return nil, cms.ErrClassNotFound
	}
	copied := *cls
	return &copied, nil
}

func (f *fakeCatalog) DecrementSpots(ctx context.Context, id string, n int) error {
	f.decrements = append(f.decrements, fmt.Sprintf("%s:%d", id, n))
	if cls, ok := f.classes[id]; ok {
		cls.SpotsAvailable -= n
	}
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeCatalog, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	catalog := &fakeCatalog{classes: map[string]*cms.Class{
		"c1": {ID: "c1", Name: "Fresh Pasta Workshop", Category: "Adults", Price: 175, TotalSessions: 4, SpotsAvailable: 5},
		"c2": {ID: "c2", Name: "Sourdough Basics", Category: "Baking", Price: 120, TotalSessions: 2, SpotsAvailable: 2},
		"c3": {ID: "c3", Name: "Little Chefs", Category: "Kids", Price: 90, TotalSessions: 3, SpotsAvailable: 0},
	}}

	return NewEngine(db, catalog, NewMemoryStore()), catalog, db
}

const testPhone = "971501234567"

func TestFullBookingConversation(t *testing.T) {
	engine, catalog, db := newTestEngine(t)
	ctx := context.Background()

	resp := engine.HandleMessage(ctx, testPhone, "hi", "")
	require.Contains(t, resp.Text, "Welcome")
	require.Len(t, resp.Buttons, 3)
	require.LessOrEqual(t, len(resp.Buttons), botTypes.MaxButtons)

	resp = engine.HandleMessage(ctx, testPhone, "", "cat_adults")
	require.True(t, resp.HasList())
	require.Equal(t, "class_c1", resp.List[0].ID)

	resp = engine.HandleMessage(ctx, testPhone, "", "class_c1")
	require.Contains(t, resp.Text, "Fresh Pasta Workshop")
	require.Len(t, resp.Buttons, 3)

	resp = engine.HandleMessage(ctx, testPhone, "", "guests_2")
	require.Equal(t, msgAskName, resp.Text)

	resp = engine.HandleMessage(ctx, testPhone, "Lina Haddad", "")
	require.Equal(t, msgAskEmail, resp.Text)

	resp = engine.HandleMessage(ctx, testPhone, "not-an-email", "")
	require.Equal(t, msgBadEmail, resp.Text)

	resp = engine.HandleMessage(ctx, testPhone, "lina@example.com", "")
	require.Contains(t, resp.Text, "booking summary")
	require.Contains(t, resp.Text, "$350.00")
	require.Len(t, resp.Buttons, 2)

	resp = engine.HandleMessage(ctx, testPhone, "", "confirm_booking")
	require.Contains(t, resp.Text, "Your booking is in!")

	var created bookingModel.Booking
	require.NoError(t, db.First(&created).Error)
	require.Equal(t, "c1", created.ClassID)
	require.Equal(t, "Lina Haddad", created.CustomerName)
	require.Equal(t, "lina@example.com", created.CustomerEmail)
	require.Equal(t, testPhone, created.CustomerPhone)
	require.Equal(t, 2, created.NumberOfGuests)
	require.Equal(t, 4, created.SessionsBooked)
	require.Equal(t, 350.0, created.TotalAmount)
	require.Equal(t, 350.0, created.AmountDue)
	require.Equal(t, bookingModel.BookingStatusPending, created.Status)
	require.Equal(t, bookingModel.BookingSourceWhatsApp, created.Source)

	var auditLog whatsappModel.BookingLog
	require.NoError(t, db.First(&auditLog).Error)
	require.Equal(t, created.ID, auditLog.BookingID)
	require.Equal(t, 2, auditLog.Guests)

	require.Equal(t, []string{"c1:2"}, catalog.decrements)

	// Session is reset after confirmation: a greeting starts over.
	resp = engine.HandleMessage(ctx, testPhone, "hello", "")
	require.Contains(t, resp.Text, "Welcome")
}

func TestFullClassesAreHiddenFromList(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	engine.HandleMessage(ctx, testPhone, "hi", "")
	resp := engine.HandleMessage(ctx, testPhone, "", "cat_kids")
	require.False(t, resp.HasList())
	require.Contains(t, resp.Text, "fully booked")
}

func TestGuestCountAboveRemainingSpots(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	engine.HandleMessage(ctx, testPhone, "hi", "")
	engine.HandleMessage(ctx, testPhone, "", "class_c2") // 2 spots left

	resp := engine.HandleMessage(ctx, testPhone, "", "guests_3")
	require.Contains(t, resp.Text, "only has 2 spot(s) left")

	// The session did not advance; a valid count still works.
	resp = engine.HandleMessage(ctx, testPhone, "", "guests_2")
	require.Equal(t, msgAskName, resp.Text)
}

func TestConfirmRechecksCapacity(t *testing.T) {
	engine, catalog, db := newTestEngine(t)
	ctx := context.Background()

	engine.HandleMessage(ctx, testPhone, "hi", "")
	engine.HandleMessage(ctx, testPhone, "", "class_c2")
	engine.HandleMessage(ctx, testPhone, "", "guests_2")
	engine.HandleMessage(ctx, testPhone, "Omar", "")
	engine.HandleMessage(ctx, testPhone, "omar@example.com", "")

	// Someone else takes the seats between summary and confirmation.
	catalog.classes["c2"].SpotsAvailable = 1

	resp := engine.HandleMessage(ctx, testPhone, "", "confirm_booking")
	require.Contains(t, resp.Text, "no longer has 2 spot(s)")
	require.Contains(t, resp.Text, "nothing was booked")

	var count int64
	require.NoError(t, db.Model(&bookingModel.Booking{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
	require.Empty(t, catalog.decrements)
}

func TestBareDigitWorksAsGuestCount(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	engine.HandleMessage(ctx, testPhone, "hi", "")
	engine.HandleMessage(ctx, testPhone, "", "class_c1")

	resp := engine.HandleMessage(ctx, testPhone, "2", "")
	require.Equal(t, msgAskName, resp.Text)
}

func TestFreeTextYesConfirmsAndNoCancels(t *testing.T) {
	engine, _, db := newTestEngine(t)
	ctx := context.Background()

	walkToConfirm := func(phone string) {
		engine.HandleMessage(ctx, phone, "hi", "")
		engine.HandleMessage(ctx, phone, "", "class_c1")
		engine.HandleMessage(ctx, phone, "", "guests_1")
		engine.HandleMessage(ctx, phone, "Sara", "")
		engine.HandleMessage(ctx, phone, "sara@example.com", "")
	}

	walkToConfirm("971500000001")
	resp := engine.HandleMessage(ctx, "971500000001", "no", "")
	require.Equal(t, msgCancelled, resp.Text)

	walkToConfirm("971500000002")
	resp = engine.HandleMessage(ctx, "971500000002", "yes", "")
	require.Contains(t, resp.Text, "Your booking is in!")

	var count int64
	require.NoError(t, db.Model(&bookingModel.Booking{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestExpiredSessionRestartsFromIdle(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	engine.HandleMessage(ctx, testPhone, "hi", "")
	engine.HandleMessage(ctx, testPhone, "", "class_c1")

	// Age the stored session past the inactivity window.
	stored, err := engine.sessions.Get(ctx, testPhone)
	require.NoError(t, err)
	stored.LastActivity = time.Now().Add(-SessionTTL - time.Minute)
	require.NoError(t, engine.sessions.Save(ctx, stored))

	// A digit that would have been a guest count now lands on a fresh
	// idle session and gets the generic help reply.
	resp := engine.HandleMessage(ctx, testPhone, "2", "")
	require.Equal(t, msgHelp, resp.Text)
}

func TestUnknownMessageGetsHelp(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	resp := engine.HandleMessage(context.Background(), testPhone, "what is the weather", "")
	require.Equal(t, msgHelp, resp.Text)
}

func TestListTitlesRespectPlatformLimits(t *testing.T) {
	engine, catalog, _ := newTestEngine(t)
	ctx := context.Background()

	catalog.classes["c9"] = &cms.Class{
		ID:             "c9",
		Name:           strings.Repeat("Mediterranean Mezze Masterclass ", 3),
		Category:       "Adults",
		Price:          200,
		TotalSessions:  6,
		SpotsAvailable: 4,
	}

	engine.HandleMessage(ctx, testPhone, "hi", "")
	resp := engine.HandleMessage(ctx, testPhone, "", "cat_adults")
	require.True(t, resp.HasList())
	for _, item := range resp.List {
		require.LessOrEqual(t, len([]rune(item.Title)), botTypes.MaxListTitleLen)
		require.LessOrEqual(t, len([]rune(item.Description)), botTypes.MaxListDescLen)
	}
}
