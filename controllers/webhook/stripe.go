package webhook

import (
	"time"

	"culinary-booking/logger"
	"culinary-booking/services/payments"
	"culinary-booking/types"
	webhookTypes "culinary-booking/types/webhook"

	"github.com/gofiber/fiber/v2"
)

// StripeWebhookController receives signed payment events from the provider.
// Its response contract is fixed by the provider's retry behavior: signature
// problems are 400s, anything the reconciler handled (or deliberately
// ignored) is acked with received:true, and only an escaped processing
// error produces a 500 so the provider retries.
type StripeWebhookController struct {
	Reconciler *payments.Reconciler
	Secret     string
	Logger     *logger.AsyncLogger
}

// NewStripeWebhookController creates a new webhook controller
func NewStripeWebhookController(reconciler *payments.Reconciler, secret string, asyncLogger *logger.AsyncLogger) *StripeWebhookController {
	return &StripeWebhookController{
		Reconciler: reconciler,
		Secret:     secret,
		Logger:     asyncLogger,
	}
}

// Handle processes one webhook delivery
func (wc *StripeWebhookController) Handle(c *fiber.Ctx) error {
	payload := c.Body()

	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No signature"})
	}

	if err := payments.VerifySignature(payload, signature, wc.Secret); err != nil {
		logger.Error("Webhook signature verification failed", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
	}

	event, err := webhookTypes.ParseEvent(payload)
	if err != nil {
		logger.Error("Failed to parse webhook payload", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook processing failed"})
	}

	result := wc.Reconciler.Process(c.Context(), event)

	wc.logDelivery(c, event, result)

	if result.Outcome == payments.OutcomeFailed {
		logger.Error("Webhook processing failed for event "+event.ID, result.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook processing failed"})
	}

	// Skipped and ignored events are acked exactly like applied ones; the
	// provider must not retry them.
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

func (wc *StripeWebhookController) logDelivery(c *fiber.Ctx, event *webhookTypes.Event, result payments.Result) {
	if wc.Logger == nil {
		return
	}
	wc.Logger.Log(types.LogEntry{
		Method:       c.Method(),
		URL:          c.OriginalURL(),
		Surface:      "stripe_webhook",
		RequestBody:  string(event.Kind) + " " + event.ID,
		ResponseBody: string(result.Outcome),
		StatusCode:   fiber.StatusOK,
		CreatedAt:    time.Now(),
	})
}
