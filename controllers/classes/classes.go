package classes

import (
	cmsService "culinary-booking/httpServices/cms"
	"culinary-booking/logger"
	"culinary-booking/types"

	"github.com/gofiber/fiber/v2"
)

// ClassesController proxies the class catalog from the headless CMS so the
// website and the bot read the same data.
type ClassesController struct {
	CMS *cmsService.Client
}

// NewClassesController creates a new classes controller
func NewClassesController(cms *cmsService.Client) *ClassesController {
	return &ClassesController{CMS: cms}
}

// Index lists classes, optionally filtered by category.
func (cc *ClassesController) Index(c *fiber.Ctx) error {
	classes, err := cc.CMS.ListClasses(c.Context(), c.Query("category"))
	if err != nil {
		logger.Error("Failed to list classes from CMS", err)
		return c.Status(fiber.StatusBadGateway).JSON(types.ApiResponse{
			Status:  fiber.StatusBadGateway,
			Message: "Class catalog unavailable",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Classes retrieved",
		Data:    classes,
	})
}

// Show returns one class by id.
func (cc *ClassesController) Show(c *fiber.Ctx) error {
	cls, err := cc.CMS.GetClass(c.Context(), c.Params("id"))
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

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Class retrieved",
		Data:    cls,
	})
}
