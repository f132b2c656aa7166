package booking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"culinary-booking/database"
	cmsService "culinary-booking/httpServices/cms"
	stripeService "culinary-booking/httpServices/stripe"
	"culinary-booking/logger"
	bookingModel "culinary-booking/models/booking"
	bookingEvent "culinary-booking/services/booking_event"
	"culinary-booking/types"
	bookingTypes "culinary-booking/types/booking"
	"culinary-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BookingController handles booking-related HTTP requests
type BookingController struct {
	DB     *gorm.DB
	CMS    *cmsService.Client
	Stripe *stripeService.Client
	Logger *logger.AsyncLogger
}

// NewBookingController creates a new booking controller
func NewBookingController(db *gorm.DB, cms *cmsService.Client, stripe *stripeService.Client, asyncLogger *logger.AsyncLogger) *BookingController {
	return &BookingController{
		DB:     db,
		CMS:    cms,
		Stripe: stripe,
		Logger: asyncLogger,
	}
}

// Store creates a pending booking from the public website form and returns
// a hosted checkout URL for payment.
func (bc *BookingController) Store(c *fiber.Ctx) error {
	var req bookingTypes.BookingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}

	if msg := validateCreateRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: msg,
			Data:    nil,
		})
	}

	cls, err := bc.CMS.GetClass(c.Context(), req.ClassID)
	if err != nil {
		if err == cmsService.ErrClassNotFound {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Class not found",
				Data:    nil,
			})
		}
		logger.Error("Failed to fetch class from CMS", err)
		return c.Status(fiber.StatusBadGateway).JSON(types.ApiResponse{
			Status:  fiber.StatusBadGateway,
			Message: "Class catalog unavailable",
			Data:    nil,
		})
	}

	if !cls.HasCapacity(req.NumberOfGuests) {
		return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: fmt.Sprintf("Only %d spot(s) left for this class", cls.SpotsAvailable),
			Data:    nil,
		})
	}

	paymentType := bookingModel.PaymentType(req.PaymentType)
	sessions := cls.TotalSessions
	total := cls.Price * float64(req.NumberOfGuests)
	if paymentType == bookingModel.PaymentTypePerSession {
		sessions = 1
		if req.Amount > 0 {
			total = req.Amount * float64(req.NumberOfGuests)
		} else if cls.TotalSessions > 0 {
			total = cls.Price / float64(cls.TotalSessions) * float64(req.NumberOfGuests)
		}
	}

	var booking bookingModel.Booking

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		booking = bookingModel.Booking{
			ClassID:        cls.ID,
			ClassName:      cls.Name,
			CustomerName:   strings.TrimSpace(req.CustomerName),
			CustomerEmail:  strings.TrimSpace(req.CustomerEmail),
			CustomerPhone:  utils.NormalizePhone(req.CustomerPhone),
			PaymentType:    paymentType,
			NumberOfGuests: req.NumberOfGuests,
			SessionsBooked: sessions,
			TotalAmount:    total,
			AmountDue:      total,
			Status:         bookingModel.BookingStatusPending,
			Source:         bookingModel.BookingSourceWebsite,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return bookingEvent.RecordStatusEvent(tx, booking.ID, bookingModel.BookingStatusPending, "website")
	})
	if err != nil {
		logger.Error("Failed to create booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create booking",
			Data:    nil,
		})
	}

	session, err := bc.Stripe.CreateCheckoutSession(c.Context(), stripeService.CheckoutSessionParams{
		AmountCents:   utils.AmountToCents(total),
		ProductName:   fmt.Sprintf("%s (%d guest(s))", cls.Name, req.NumberOfGuests),
		CustomerEmail: booking.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		Metadata:      map[string]string{"booking_id": fmt.Sprintf("%d", booking.ID)},
	})
	if err != nil {
		logger.Error("Failed to create checkout session", err)
		return c.Status(fiber.StatusBadGateway).JSON(types.ApiResponse{
			Status:  fiber.StatusBadGateway,
			Message: "Payment provider unavailable",
			Data:    fiber.Map{"booking_id": booking.ID},
		})
	}

	if err := database.DB.Model(&booking).Update("stripe_checkout_session_id", session.ID).Error; err != nil {
		logger.Error("Failed to store checkout session id", err)
	}

	logger.Info(fmt.Sprintf("Booking %d created for class %s, awaiting payment", booking.ID, cls.ID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Booking created",
		Data: fiber.Map{
			"booking_id":   booking.ID,
			"checkout_url": session.URL,
			"total_amount": total,
		},
	})
}

func validateCreateRequest(req *bookingTypes.BookingCreateRequest) string {
	if strings.TrimSpace(req.ClassID) == "" {
		return "class_id is required"
	}
	if len(strings.TrimSpace(req.CustomerName)) < 2 {
		return "customer_name is required"
	}
	if !utils.IsValidEmail(req.CustomerEmail) {
		return "customer_email is invalid"
	}
	if utils.NormalizePhone(req.CustomerPhone) == "" {
		return "customer_phone is required"
	}
	if req.NumberOfGuests < 1 {
		req.NumberOfGuests = 1
	}
	if req.PaymentType == "" {
		req.PaymentType = string(bookingModel.PaymentTypeFullCourse)
	}
	if !bookingModel.PaymentType(req.PaymentType).IsValid() {
		return "payment_type must be full_course or per_session"
	}
	return ""
}

// Index lists bookings for the back office with filters and pagination.
func (bc *BookingController) Index(c *fiber.Ctx) error {
	var q bookingTypes.BookingListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid query parameters",
			Data:    nil,
		})
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}

	query := database.DB.Model(&bookingModel.Booking{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Source != "" {
		query = query.Where("source = ?", q.Source)
	}
	if q.ClassID != "" {
		query = query.Where("class_id = ?", q.ClassID)
	}
	if q.Phone != "" {
		query = query.Where("customer_phone = ?", utils.NormalizePhone(q.Phone))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	var bookings []bookingModel.Booking
	err := query.Order("created_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&bookings).Error
	if err != nil {
		logger.Error("Failed to list bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Bookings retrieved",
		Data: fiber.Map{
			"bookings":  bookings,
			"total":     total,
			"page":      q.Page,
			"page_size": q.PageSize,
		},
	})
}

// Show returns one booking with its guests and status history.
func (bc *BookingController) Show(c *fiber.Ctx) error {
	id := c.Params("id")

	var booking bookingModel.Booking
	err := database.DB.Preload("Guests").Where("id = ?", id).First(&booking).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Booking not found",
			Data:    nil,
		})
	}
	if err != nil {
		logger.Error("Failed to fetch booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	var events []bookingModel.BookingStatusEvent
	if err := database.DB.Where("booking_id = ?", booking.ID).Order("created_at ASC").Find(&events).Error; err != nil {
		logger.Error("Failed to fetch booking status events", err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking retrieved",
		Data: fiber.Map{
			"booking": booking,
			"events":  events,
		},
	})
}

// Cancel marks a booking cancelled. Refunds are issued from the payment
// provider dashboard and land back here through the charge.refunded webhook.
func (bc *BookingController) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")

	var req bookingTypes.CancelRequest
	_ = c.BodyParser(&req) // reason is optional

	var booking bookingModel.Booking
	err := database.DB.Where("id = ?", id).First(&booking).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Booking not found",
			Data:    nil,
		})
	}
	if err != nil {
		logger.Error("Failed to fetch booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	if !booking.Status.CanBeCancelled() {
		return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: fmt.Sprintf("Booking in status %s cannot be cancelled", booking.Status),
			Data:    nil,
		})
	}

	username := utils.GetUsername(c)
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&booking).Update("status", bookingModel.BookingStatusCancelled).Error; err != nil {
			return err
		}
		return bookingEvent.RecordStatusEvent(tx, booking.ID, bookingModel.BookingStatusCancelled, username)
	})
	if err != nil {
		logger.Error("Failed to cancel booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to cancel booking",
			Data:    nil,
		})
	}

	logger.Info(fmt.Sprintf("Booking %d cancelled by %s", booking.ID, username))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking cancelled",
		Data:    booking,
	})
}

// qrPayload is the decrypted content of a guest check-in QR code.
type qrPayload struct {
	BookingID uint   `json:"booking_id"`
	GuestID   uint   `json:"guest_id"`
	QRToken   string `json:"qr_token"`
}

// CheckIn marks one guest as arrived. Accepts either the encrypted QR
// payload printed on the ticket or a bare guest token.
func (bc *BookingController) CheckIn(c *fiber.Ctx) error {
	var req bookingTypes.CheckInRequest
	if err := c.BodyParser(&req); err != nil || req.QRToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "qr_token is required",
			Data:    nil,
		})
	}

	token := req.QRToken
	if decrypted, err := utils.DecryptData(token); err == nil {
		var payload qrPayload
		if err := json.Unmarshal([]byte(decrypted), &payload); err == nil && payload.QRToken != "" {
			token = payload.QRToken
		}
	}

	var guest bookingModel.BookingGuest
	err := database.DB.Where("qr_token = ?", token).First(&guest).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Unknown check-in token",
			Data:    nil,
		})
	}
	if err != nil {
		logger.Error("Failed to look up guest", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	if guest.CheckedInAt != nil {
		return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: fmt.Sprintf("%s already checked in at %s", guest.Name, guest.CheckedInAt.Format(time.RFC3339)),
			Data:    guest,
		})
	}

	var booking bookingModel.Booking
	if err := database.DB.Where("id = ?", guest.BookingID).First(&booking).Error; err != nil {
		logger.Error("Failed to fetch booking for check-in", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	if !booking.Status.CanBeCheckedIn() {
		return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: fmt.Sprintf("Booking is %s, not confirmed", booking.Status),
			Data:    nil,
		})
	}

	nowTime := time.Now()
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&guest).Update("checked_in_at", nowTime).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&bookingModel.BookingGuest{}).
			Where("booking_id = ? AND checked_in_at IS NULL AND id <> ?", booking.ID, guest.ID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			return tx.Model(&booking).Update("checked_in_at", nowTime).Error
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to record check-in", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to record check-in",
			Data:    nil,
		})
	}

	logger.Success(fmt.Sprintf("Guest %s checked in for booking %d", guest.Name, booking.ID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Checked in",
		Data: fiber.Map{
			"guest_name": guest.Name,
			"class_name": booking.ClassName,
			"booking_id": booking.ID,
		},
	})
}
