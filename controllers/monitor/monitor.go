package monitor

import (
	"fmt"
	"sync"

	"culinary-booking/database"
	"culinary-booking/logger"
	whatsappModel "culinary-booking/models/whatsapp"
	"culinary-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

// Hub fans alert payloads out to every connected monitor websocket.
// Dead connections are dropped on the first failed write.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// Broadcast writes the payload to every connected client.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ClientCount returns the number of connected monitor clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// MonitorController serves the live alert websocket and the alert history.
type MonitorController struct {
	DB  *gorm.DB
	Hub *Hub
}

// NewMonitorController creates a new monitor controller
func NewMonitorController(db *gorm.DB, hub *Hub) *MonitorController {
	return &MonitorController{
		DB:  db,
		Hub: hub,
	}
}

// Websocket keeps the monitor connection open until the client hangs up.
// Inbound frames are discarded; the hub only pushes.
func (mc *MonitorController) Websocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		mc.Hub.register(conn)
		defer func() {
			mc.Hub.unregister(conn)
			conn.Close()
		}()
		logger.Info(fmt.Sprintf("Monitor client connected (%d active)", mc.Hub.ClientCount()))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}

// RecentAlerts lists the latest cash alerts, unacknowledged first.
func (mc *MonitorController) RecentAlerts(c *fiber.Ctx) error {
	query := database.DB.Model(&whatsappModel.CashAlert{})
	if c.Query("unacknowledged") == "true" {
		query = query.Where("acknowledged = ?", false)
	}

	var alerts []whatsappModel.CashAlert
	if err := query.Order("acknowledged ASC, created_at DESC").Limit(100).Find(&alerts).Error; err != nil {
		logger.Error("Failed to list cash alerts", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Alerts retrieved",
		Data:    alerts,
	})
}

// AcknowledgeAlert marks one alert as handled.
func (mc *MonitorController) AcknowledgeAlert(c *fiber.Ctx) error {
	id := c.Params("id")

	var alert whatsappModel.CashAlert
	err := database.DB.Where("id = ?", id).First(&alert).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Alert not found",
			Data:    nil,
		})
	}
	if err != nil {
		logger.Error("Failed to fetch cash alert", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	if err := database.DB.Model(&alert).Update("acknowledged", true).Error; err != nil {
		logger.Error("Failed to acknowledge cash alert", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to acknowledge alert",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Alert acknowledged",
		Data:    alert,
	})
}
