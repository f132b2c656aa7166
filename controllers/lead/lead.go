package lead

import (
	"fmt"
	"strings"

	"culinary-booking/database"
	"culinary-booking/logger"
	leadModel "culinary-booking/models/lead"
	"culinary-booking/types"
	leadTypes "culinary-booking/types/lead"
	"culinary-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LeadController captures and manages prospective customers.
type LeadController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewLeadController creates a new lead controller
func NewLeadController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *LeadController {
	return &LeadController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// Store captures a lead from the public contact form.
func (lc *LeadController) Store(c *fiber.Ctx) error {
	var req leadTypes.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}

	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "name is required",
			Data:    nil,
		})
	}
	if req.Phone == "" && req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "phone or email is required",
			Data:    nil,
		})
	}
	if req.Email != "" && !utils.IsValidEmail(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "email is invalid",
			Data:    nil,
		})
	}

	source := req.Source
	if source == "" {
		source = "website"
	}

	lead := leadModel.Lead{
		Name:     strings.TrimSpace(req.Name),
		Phone:    utils.NormalizePhone(req.Phone),
		Email:    strings.TrimSpace(req.Email),
		Interest: req.Interest,
		Source:   source,
		Status:   leadModel.LeadStatusNew,
		Notes:    req.Notes,
	}
	if err := database.DB.Create(&lead).Error; err != nil {
		logger.Error("Failed to create lead", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create lead",
			Data:    nil,
		})
	}

	logger.Info(fmt.Sprintf("Lead %d captured from %s", lead.ID, source))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Lead captured",
		Data:    lead,
	})
}

// Index lists leads for the back office, optionally filtered by status.
func (lc *LeadController) Index(c *fiber.Ctx) error {
	query := database.DB.Model(&leadModel.Lead{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var leads []leadModel.Lead
	if err := query.Order("created_at DESC").Limit(500).Find(&leads).Error; err != nil {
		logger.Error("Failed to list leads", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Leads retrieved",
		Data:    leads,
	})
}

// Update changes a lead's follow-up status and notes.
func (lc *LeadController) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var req leadTypes.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}

	var lead leadModel.Lead
	err := database.DB.Where("id = ?", id).First(&lead).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Lead not found",
			Data:    nil,
		})
	}
	if err != nil {
		logger.Error("Failed to fetch lead", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		status := leadModel.LeadStatus(*req.Status)
		if !status.IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid lead status: " + *req.Status,
				Data:    nil,
			})
		}
		updates["status"] = status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Nothing to update",
			Data:    nil,
		})
	}

	if err := database.DB.Model(&lead).Updates(updates).Error; err != nil {
		logger.Error("Failed to update lead", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update lead",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Lead updated",
		Data:    lead,
	})
}
