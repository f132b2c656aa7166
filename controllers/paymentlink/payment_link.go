package paymentlink

import (
	"fmt"
	"time"

	"culinary-booking/database"
	stripeService "culinary-booking/httpServices/stripe"
	"culinary-booking/logger"
	paymentModel "culinary-booking/models/payment"
	"culinary-booking/types"
	paymentLinkTypes "culinary-booking/types/paymentlink"
	"culinary-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PaymentLinkController issues and lists reusable payment links.
type PaymentLinkController struct {
	DB     *gorm.DB
	Stripe *stripeService.Client
	Logger *logger.AsyncLogger
}

// NewPaymentLinkController creates a new payment link controller
func NewPaymentLinkController(db *gorm.DB, stripe *stripeService.Client, asyncLogger *logger.AsyncLogger) *PaymentLinkController {
	return &PaymentLinkController{
		DB:     db,
		Stripe: stripe,
		Logger: asyncLogger,
	}
}

// Store creates a payment link and its hosted checkout session.
func (plc *PaymentLinkController) Store(c *fiber.Ctx) error {
	var req paymentLinkTypes.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}

	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "amount must be positive",
			Data:    nil,
		})
	}

	singleUse := true
	if req.SingleUse != nil {
		singleUse = *req.SingleUse
	}
	maxUses := req.MaxUses
	if singleUse {
		maxUses = 1
	} else if maxUses < 1 {
		maxUses = 0 // unlimited
	}

	var expiresAt *time.Time
	if req.ExpiresInDays > 0 {
		t := time.Now().AddDate(0, 0, req.ExpiresInDays)
		expiresAt = &t
	}

	link := paymentModel.PaymentLink{
		Token:            utils.NewQRToken(),
		BookingID:        req.BookingID,
		ServiceBookingID: req.ServiceBookingID,
		InvoiceID:        req.InvoiceID,
		Amount:           req.Amount,
		Description:      req.Description,
		SingleUse:        singleUse,
		MaxUses:          maxUses,
		Status:           paymentModel.PaymentLinkStatusActive,
		CreatedBy:        utils.GetUsername(c),
		ExpiresAt:        expiresAt,
	}

	if err := database.DB.Create(&link).Error; err != nil {
		logger.Error("Failed to create payment link", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create payment link",
			Data:    nil,
		})
	}

	productName := req.Description
	if productName == "" {
		productName = fmt.Sprintf("Payment link %s", link.Token)
	}
	session, err := plc.Stripe.CreateCheckoutSession(c.Context(), stripeService.CheckoutSessionParams{
		AmountCents: utils.AmountToCents(req.Amount),
		ProductName: productName,
		Metadata:    map[string]string{"payment_link_id": fmt.Sprintf("%d", link.ID)},
	})
	if err != nil {
		logger.Error("Failed to create checkout session for payment link", err)
		return c.Status(fiber.StatusBadGateway).JSON(types.ApiResponse{
			Status:  fiber.StatusBadGateway,
			Message: "Payment provider unavailable",
			Data:    link,
		})
	}

	logger.Info(fmt.Sprintf("Payment link %d created by %s", link.ID, link.CreatedBy))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Payment link created",
		Data: fiber.Map{
			"payment_link": link,
			"checkout_url": session.URL,
		},
	})
}

// Index lists payment links, newest first, optionally filtered by status.
func (plc *PaymentLinkController) Index(c *fiber.Ctx) error {
	query := database.DB.Model(&paymentModel.PaymentLink{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var links []paymentModel.PaymentLink
	if err := query.Order("created_at DESC").Limit(200).Find(&links).Error; err != nil {
		logger.Error("Failed to list payment links", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Payment links retrieved",
		Data:    links,
	})
}

// Show returns one payment link by its opaque token.
func (plc *PaymentLinkController) Show(c *fiber.Ctx) error {
	token := c.Params("token")

	var link paymentModel.PaymentLink
	err := database.DB.Where("token = ?", token).First(&link).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Payment link not found",
			Data:    nil,
		})
	}
	if err != nil {
		logger.Error("Failed to fetch payment link", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Payment link retrieved",
		Data: fiber.Map{
			"payment_link": link,
			"usable":       link.IsUsable(),
		},
	})
}
