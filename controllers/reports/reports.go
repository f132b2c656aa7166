package reports

import (
	"strconv"

	"culinary-booking/database"
	"culinary-booking/logger"
	bookingModel "culinary-booking/models/booking"
	"culinary-booking/types"
	"culinary-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReportsController serves the back-office dashboard aggregates.
type ReportsController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewReportsController creates a new reports controller
func NewReportsController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *ReportsController {
	return &ReportsController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// Handle serves GET /api/admin/reports?type=...&period=...&start=...&end=...
// Report types: overview, clients, classes, revenue, bookings.
func (rc *ReportsController) Handle(c *fiber.Ctx) error {
	window, err := utils.ResolvePeriod(c.Query("period"), c.Query("start"), c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	var bookings []bookingModel.Booking
	err = database.DB.
		Where("created_at >= ? AND created_at < ?", window.Start, window.End).
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		logger.Error("Failed to load bookings for report", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	reportType := c.Query("type", "overview")
	var data interface{}

	switch reportType {
	case "overview":
		data = buildOverview(bookings)
	case "clients":
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		data = buildClientStats(bookings, limit)
	case "classes":
		data = buildClassStats(bookings)
	case "revenue":
		data = buildRevenueSeries(bookings, window)
	case "bookings":
		data = bookings
	default:
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Unknown report type: " + reportType,
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Report generated",
		Data: fiber.Map{
			"type":   reportType,
			"start":  window.Start,
			"end":    window.End,
			"report": data,
		},
	})
}
