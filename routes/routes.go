package routes

import (
	"os"

	"culinary-booking/constants"
	bookingController "culinary-booking/controllers/booking"
	classesController "culinary-booking/controllers/classes"
	leadController "culinary-booking/controllers/lead"
	monitorController "culinary-booking/controllers/monitor"
	paymentLinkController "culinary-booking/controllers/paymentlink"
	reportsController "culinary-booking/controllers/reports"
	webhookController "culinary-booking/controllers/webhook"
	whatsappController "culinary-booking/controllers/whatsapp"
	cmsService "culinary-booking/httpServices/cms"
	stripeService "culinary-booking/httpServices/stripe"
	whatsappService "culinary-booking/httpServices/whatsapp"
	"culinary-booking/logger"
	"culinary-booking/middleware"
	"culinary-booking/services/bot"
	"culinary-booking/services/cashwatch"
	"culinary-booking/services/mailer"
	"culinary-booking/services/payments"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, redisClient *redis.Client) {
	cmsClient := cmsService.NewClient(os.Getenv("CMS_BASE_URL"), os.Getenv("CMS_API_TOKEN"))
	stripeClient := stripeService.NewClient(os.Getenv("STRIPE_SECRET_KEY"))
	waClient := whatsappService.NewClient(os.Getenv("WHATSAPP_ACCESS_TOKEN"), os.Getenv("WHATSAPP_PHONE_NUMBER_ID"))
	asyncLogger := logger.NewAsyncLogger(db)

	var sessionStore bot.SessionStore
	if redisClient != nil {
		sessionStore = bot.NewRedisStore(redisClient)
	} else {
		sessionStore = bot.NewMemoryStore()
	}

	hub := monitorController.NewHub()
	watcher := cashwatch.NewWatcher(db, hub)
	engine := bot.NewEngine(db, cmsClient, sessionStore)
	reconciler := payments.NewReconciler(db, mailer.NewService())

	bookingCtrl := bookingController.NewBookingController(db, cmsClient, stripeClient, asyncLogger)
	classesCtrl := classesController.NewClassesController(cmsClient)
	leadCtrl := leadController.NewLeadController(db, asyncLogger)
	monitorCtrl := monitorController.NewMonitorController(db, hub)
	paymentLinkCtrl := paymentLinkController.NewPaymentLinkController(db, stripeClient, asyncLogger)
	reportsCtrl := reportsController.NewReportsController(db, asyncLogger)
	stripeWebhookCtrl := webhookController.NewStripeWebhookController(reconciler, os.Getenv("STRIPE_WEBHOOK_SECRET"), asyncLogger)
	waCtrl := whatsappController.NewWhatsAppController(engine, waClient, watcher,
		os.Getenv("WHATSAPP_VERIFY_TOKEN"), os.Getenv("WHATSAPP_APP_SECRET"))

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "culinary-booking", "status": "ok"})
	})

	/*=============================================================================
	| Webhook Routes (provider-authenticated, no JWT)
	===============================================================================*/
	app.Post("/webhooks/stripe", stripeWebhookCtrl.Handle)
	app.Get("/webhooks/whatsapp", waCtrl.Verify)
	app.Post("/webhooks/whatsapp", waCtrl.Receive)

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Get("/classes", classesCtrl.Index)
	api.Get("/classes/:id", classesCtrl.Show)
	api.Post("/bookings", bookingCtrl.Store)
	api.Post("/leads", leadCtrl.Store)

	/*=============================================================================
	| Back Office Routes
	===============================================================================*/
	admin := api.Group("/admin")

	admin.Get("/bookings", middleware.RequirePermissions(
		constants.BackOfficePermissions...,
	), bookingCtrl.Index)

	admin.Get("/bookings/:id", middleware.RequirePermissions(
		constants.BackOfficePermissions...,
	), bookingCtrl.Show)

	admin.Post("/bookings/:id/cancel", middleware.RequirePermissions(
		constants.BackOfficePermissions...,
	), bookingCtrl.Cancel)

	admin.Post("/checkin", middleware.RequirePermissions(
		constants.FrontDeskPermissions...,
	), bookingCtrl.CheckIn)

	admin.Get("/reports", middleware.RequirePermissions(
		constants.BackOfficePermissions...,
	), reportsCtrl.Handle)

	admin.Post("/payment-links", middleware.RequirePermissions(
		constants.FinancePermissions...,
	), paymentLinkCtrl.Store)

	admin.Get("/payment-links", middleware.RequirePermissions(
		constants.FinancePermissions...,
	), paymentLinkCtrl.Index)

	admin.Get("/payment-links/:token", middleware.RequirePermissions(
		constants.FinancePermissions...,
	), paymentLinkCtrl.Show)

	admin.Get("/leads", middleware.RequirePermissions(
		constants.BackOfficePermissions...,
	), leadCtrl.Index)

	admin.Put("/leads/:id", middleware.RequirePermissions(
		constants.BackOfficePermissions...,
	), leadCtrl.Update)

	admin.Get("/alerts", middleware.RequirePermissions(
		constants.BackOfficePermissions...,
	), monitorCtrl.RecentAlerts)

	admin.Post("/alerts/:id/ack", middleware.RequirePermissions(
		constants.BackOfficePermissions...,
	), monitorCtrl.AcknowledgeAlert)

	/*=============================================================================
	| Monitor Websocket
	===============================================================================*/
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/monitor", monitorCtrl.Websocket())
}
