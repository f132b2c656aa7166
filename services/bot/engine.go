package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"culinary-booking/httpServices/cms"
	"culinary-booking/logger"
	bookingModel "culinary-booking/models/booking"
	whatsappModel "culinary-booking/models/whatsapp"
	botTypes "culinary-booking/types/bot"
	"culinary-booking/utils"

	"gorm.io/gorm"
)

// ClassCatalog is the slice of the CMS the bot needs: browsing, the fresh
// capacity re-check before insert, and the seat decrement afterwards.
type ClassCatalog interface {
	ListClasses(ctx context.Context, category string) ([]cms.Class, error)
	GetClass(ctx context.Context, id string) (*cms.Class, error)
	DecrementSpots(ctx context.Context, id string, n int) error
}

// categories offered in the welcome menu. Three entries because the
// platform allows at most three quick-reply buttons.
var categories = []struct {
	ID    string
	Title string
}{
	{"kids", "Kids"},
	{"adults", "Adults"},
	{"baking", "Baking"},
}

const (
	msgHelp = "I can help you browse and book our cooking classes! 👩‍🍳\nSend \"hi\" to get started, or \"classes\" to see what's coming up."

	msgWelcome = "Welcome to The Culinary Studio! 👋\nWhich classes would you like to explore?"

	msgSorry = "Sorry, something went wrong on our side. Please try again in a moment."

	msgAskName = "Great! What name should the booking be under?"

	msgAskEmail = "Thanks! And what's your email address? We'll send the confirmation there."

	msgBadEmail = "Hmm, that doesn't look like a valid email address. Could you check it and send it again?"

	msgCancelled = "No problem, the booking was cancelled. Send \"hi\" whenever you'd like to start again."
)

// Engine drives the per-phone conversation state machine. All access to a
// phone's session goes through its keyed mutex, so retried deliveries of
// the same message cannot interleave session reads and writes.
type Engine struct {
	db       *gorm.DB
	catalog  ClassCatalog
	sessions SessionStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(db *gorm.DB, catalog ClassCatalog, sessions SessionStore) *Engine {
	return &Engine{
		db:       db,
		catalog:  catalog,
		sessions: sessions,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lockPhone(phone string) func() {
	e.mu.Lock()
	lock, ok := e.locks[phone]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[phone] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// HandleMessage turns one inbound message into a reply and advances the
// sender's session. It always returns a conversational response; failures
// never leave the user without an answer.
func (e *Engine) HandleMessage(ctx context.Context, phone, text, interactiveID string) botTypes.Response {
	phone = utils.NormalizePhone(phone)

	unlock := e.lockPhone(phone)
	defer unlock()

	session, err := e.sessions.Get(ctx, phone)
	if err != nil {
		logger.Error("Failed to load bot session for "+phone, err)
		session = nil
	}
	if session == nil || session.IsExpired() {
		session = NewSession(phone)
	}

	resp := e.dispatch(ctx, session, text, interactiveID)

	session.LastActivity = time.Now()
	if err := e.sessions.Save(ctx, session); err != nil {
		logger.Error("Failed to save bot session for "+phone, err)
	}

	return resp
}

func (e *Engine) dispatch(ctx context.Context, session *Session, text, interactiveID string) botTypes.Response {
	input := strings.TrimSpace(text)
	lower := strings.ToLower(input)

	// Button and list selections carry their own ids regardless of step.
	if interactiveID != "" {
		switch {
		case strings.HasPrefix(interactiveID, "cat_"):
			return e.handleCategory(ctx, session, strings.TrimPrefix(interactiveID, "cat_"))
		case strings.HasPrefix(interactiveID, "class_"):
			return e.handleClassSelection(ctx, session, strings.TrimPrefix(interactiveID, "class_"))
		case strings.HasPrefix(interactiveID, "guests_"):
			return e.handleGuestCount(session, strings.TrimPrefix(interactiveID, "guests_"))
		case interactiveID == "confirm_booking":
			return e.handleConfirm(ctx, session)
		case interactiveID == "cancel_booking":
			return e.handleCancel(session)
		}
		return botTypes.Response{Text: msgHelp}
	}

	switch session.Step {
	case StepIdle:
		if wantsToBrowse(lower) {
			session.Step = StepBrowsing
			return welcomeResponse()
		}

	case StepBrowsing:
		if cat := matchCategory(lower); cat != "" {
			return e.handleCategory(ctx, session, cat)
		}
		if wantsToBrowse(lower) {
			return welcomeResponse()
		}

	case StepSelectingClass:
		// Waiting on a guest-count button; a bare digit works too.
		if n, err := strconv.Atoi(lower); err == nil {
			return e.handleGuestCount(session, strconv.Itoa(n))
		}
		return guestCountPrompt(session.SelectedClassName)

	case StepCollectingInfo:
		return e.handleInfoReply(session, input)

	case StepConfirming:
		switch lower {
		case "yes", "y", "confirm":
			return e.handleConfirm(ctx, session)
		case "no", "n", "cancel":
			return e.handleCancel(session)
		}
		return confirmPrompt(session)
	}

	return botTypes.Response{Text: msgHelp}
}

func wantsToBrowse(lower string) bool {
	keywords := []string{"hi", "hello", "hey", "hola", "marhaba", "class", "course", "cook", "book", "reserve", "menu", "start"}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func matchCategory(lower string) string {
	for _, cat := range categories {
		if strings.Contains(lower, cat.ID) || strings.Contains(lower, strings.ToLower(cat.Title)) {
			return cat.ID
		}
	}
	return ""
}

func categoryTitle(id string) string {
	for _, cat := range categories {
		if cat.ID == id {
			return cat.Title
		}
	}
	return id
}

func welcomeResponse() botTypes.Response {
	buttons := make([]botTypes.Button, 0, len(categories))
	for _, cat := range categories {
		buttons = append(buttons, botTypes.Button{ID: "cat_" + cat.ID, Title: cat.Title})
	}
	return botTypes.Response{Text: msgWelcome, Buttons: buttons}
}

func (e *Engine) handleCategory(ctx context.Context, session *Session, category string) botTypes.Response {
	classes, err := e.catalog.ListClasses(ctx, categoryTitle(category))
	if err != nil {
		logger.Error("Failed to list classes for category "+category, err)
		return botTypes.Response{Text: msgSorry}
	}

	session.Step = StepBrowsing

	items := make([]botTypes.ListItem, 0, len(classes))
	for _, cls := range classes {
		if cls.SpotsAvailable <= 0 {
			continue // full classes are hidden, not shown as unavailable
		}
		desc := fmt.Sprintf("%d sessions • $%.0f • %d spots left", cls.TotalSessions, cls.Price, cls.SpotsAvailable)
		items = append(items, botTypes.ListItem{
			ID:          "class_" + cls.ID,
			Title:       utils.Truncate(cls.Name, botTypes.MaxListTitleLen),
			Description: utils.Truncate(desc, botTypes.MaxListDescLen),
		})
		if len(items) == botTypes.MaxListRowsPerMsg {
			break
		}
	}

	title := categoryTitle(category)
	if len(items) == 0 {
		return botTypes.Response{Text: fmt.Sprintf("All our %s classes are fully booked right now. 😔 Check back soon, or pick another category!", title)}
	}

	return botTypes.Response{
		Text:      fmt.Sprintf("Here are our upcoming %s classes:", title),
		List:      items,
		ListTitle: title + " Classes",
	}
}

func (e *Engine) handleClassSelection(ctx context.Context, session *Session, classID string) botTypes.Response {
	cls, err := e.catalog.GetClass(ctx, classID)
	if errors.Is(err, cms.ErrClassNotFound) {
		return botTypes.Response{Text: "Sorry, that class is no longer available. Pick another one from the list!"}
	}
	if err != nil {
		logger.Error("Failed to fetch class "+classID, err)
		return botTypes.Response{Text: msgSorry}
	}
	if cls.SpotsAvailable <= 0 {
		return botTypes.Response{Text: fmt.Sprintf("Sorry, %s just filled up. Pick another class from the list!", cls.Name)}
	}

	session.Step = StepSelectingClass
	session.SelectedClassID = cls.ID
	session.SelectedClassName = cls.Name
	session.SelectedClassPrice = cls.Price
	session.SelectedClassSessions = cls.TotalSessions
	session.SelectedClassSpots = cls.SpotsAvailable

	return guestCountPrompt(cls.Name)
}

func guestCountPrompt(className string) botTypes.Response {
	return botTypes.Response{
		Text: fmt.Sprintf("Great choice! %s it is. How many guests will be joining?", className),
		Buttons: []botTypes.Button{
			{ID: "guests_1", Title: "1 Guest"},
			{ID: "guests_2", Title: "2 Guests"},
			{ID: "guests_3", Title: "3 Guests"},
		},
	}
}

func (e *Engine) handleGuestCount(session *Session, raw string) botTypes.Response {
	if session.Step != StepSelectingClass {
		return botTypes.Response{Text: msgHelp}
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > botTypes.MaxButtons {
		return guestCountPrompt(session.SelectedClassName)
	}

	if n > session.SelectedClassSpots {
		return botTypes.Response{Text: fmt.Sprintf("Sorry, %s only has %d spot(s) left, so we can't fit %d guests. Pick a smaller group or another class!",
			session.SelectedClassName, session.SelectedClassSpots, n)}
	}

	session.NumberOfGuests = n
	session.Step = StepCollectingInfo
	session.AwaitingField = FieldName

	return botTypes.Response{Text: msgAskName}
}

func (e *Engine) handleInfoReply(session *Session, input string) botTypes.Response {
	switch session.AwaitingField {
	case FieldName:
		if len(strings.TrimSpace(input)) < 2 {
			return botTypes.Response{Text: msgAskName}
		}
		session.UserName = strings.TrimSpace(input)
		session.AwaitingField = FieldEmail
		return botTypes.Response{Text: msgAskEmail}

	case FieldEmail:
		if !utils.IsValidEmail(input) {
			return botTypes.Response{Text: msgBadEmail}
		}
		session.UserEmail = strings.ToLower(strings.TrimSpace(input))
		session.AwaitingField = FieldNone
		session.Step = StepConfirming
		return confirmPrompt(session)
	}

	return botTypes.Response{Text: msgHelp}
}

func confirmPrompt(session *Session) botTypes.Response {
	total := session.SelectedClassPrice * float64(session.NumberOfGuests)
	summary := fmt.Sprintf("Here's your booking summary:\n\n📚 %s\n👥 %d guest(s)\n🗓 %d sessions\n💰 $%.2f total\n\n%s — %s\n\nShall I confirm it?",
		session.SelectedClassName, session.NumberOfGuests, session.SelectedClassSessions, total, session.UserName, session.UserEmail)
	return botTypes.Response{
		Text: summary,
		Buttons: []botTypes.Button{
			{ID: "confirm_booking", Title: "Confirm ✅"},
			{ID: "cancel_booking", Title: "Cancel ❌"},
		},
	}
}

func (e *Engine) handleConfirm(ctx context.Context, session *Session) botTypes.Response {
	if session.Step != StepConfirming {
		return botTypes.Response{Text: msgHelp}
	}

	// Capacity observed at selection time can be stale by now, so the
	// authoritative class record is re-checked immediately before insert.
	cls, err := e.catalog.GetClass(ctx, session.SelectedClassID)
	if errors.Is(err, cms.ErrClassNotFound) {
		session.Reset()
		return botTypes.Response{Text: "Sorry, that class is no longer available, so nothing was booked. Send \"hi\" to browse again!"}
	}
	if err != nil {
		logger.Error("Failed to re-check class "+session.SelectedClassID, err)
		session.Reset()
		return botTypes.Response{Text: msgSorry}
	}
	if !cls.HasCapacity(session.NumberOfGuests) {
		session.Reset()
		return botTypes.Response{Text: fmt.Sprintf("Sorry, %s no longer has %d spot(s) available, so nothing was booked. Send \"hi\" to browse again!",
			cls.Name, session.NumberOfGuests)}
	}

	total := cls.Price * float64(session.NumberOfGuests)
	newBooking := bookingModel.Booking{
		ClassID:        cls.ID,
		ClassName:      cls.Name,
		CustomerName:   session.UserName,
		CustomerEmail:  session.UserEmail,
		CustomerPhone:  session.Phone,
		PaymentType:    bookingModel.PaymentTypeFullCourse,
		NumberOfGuests: session.NumberOfGuests,
		SessionsBooked: cls.TotalSessions,
		TotalAmount:    total,
		AmountPaid:     0,
		AmountDue:      total,
		Status:         bookingModel.BookingStatusPending,
		Source:         bookingModel.BookingSourceWhatsApp,
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newBooking).Error; err != nil {
			return err
		}

		statusEvent := bookingModel.BookingStatusEvent{
			BookingID: newBooking.ID,
			Status:    bookingModel.BookingStatusPending,
			CreatedBy: "bot",
		}
		if err := tx.Create(&statusEvent).Error; err != nil {
			return err
		}

		auditLog := whatsappModel.BookingLog{
			BookingID: newBooking.ID,
			Phone:     session.Phone,
			ClassID:   cls.ID,
			ClassName: cls.Name,
			Guests:    session.NumberOfGuests,
		}
		return tx.Create(&auditLog).Error
	})
	if err != nil {
		logger.Error("Failed to create WhatsApp booking", err)
		session.Reset()
		return botTypes.Response{Text: msgSorry}
	}

	// Known gap: the seat decrement is a separate write to a separate
	// store. If it fails the booking still exists, and admins reconcile
	// from the whatsapp_bookings audit trail.
	if err := e.catalog.DecrementSpots(ctx, cls.ID, session.NumberOfGuests); err != nil {
		logger.Error(fmt.Sprintf("Failed to decrement spots for class %s (booking %d)", cls.ID, newBooking.ID), err)
	}

	logger.Success(fmt.Sprintf("WhatsApp booking created successfully with ID: %d", newBooking.ID))

	text := fmt.Sprintf("Your booking is in! 🎉\n\nBooking #%d\n📚 %s\n👥 %d guest(s)\n💰 $%.2f due\n\nWe'll send payment details to %s shortly. See you in the kitchen!",
		newBooking.ID, cls.Name, session.NumberOfGuests, total, session.UserEmail)

	session.Reset()
	return botTypes.Response{Text: text}
}

func (e *Engine) handleCancel(session *Session) botTypes.Response {
	if session.Step != StepConfirming {
		return botTypes.Response{Text: msgHelp}
	}
	session.Reset()
	return botTypes.Response{Text: msgCancelled}
}
