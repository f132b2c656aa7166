package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"culinary-booking/logger"
	"culinary-booking/services/bot"
	"culinary-booking/services/cashwatch"
	botTypes "culinary-booking/types/bot"

	"github.com/gofiber/fiber/v2"
)

// ResponseSender delivers a bot response back to the sender's phone.
type ResponseSender interface {
	SendResponse(ctx context.Context, to string, resp botTypes.Response) bool
}

// WhatsAppController terminates the Meta Cloud API webhook: the GET
// verification handshake and the POST message deliveries feeding the bot.
type WhatsAppController struct {
	Engine      *bot.Engine
	Sender      ResponseSender
	Watcher     *cashwatch.Watcher
	VerifyToken string
	AppSecret   string
}

// NewWhatsAppController creates a new WhatsApp webhook controller
func NewWhatsAppController(engine *bot.Engine, sender ResponseSender, watcher *cashwatch.Watcher, verifyToken, appSecret string) *WhatsAppController {
	return &WhatsAppController{
		Engine:      engine,
		Sender:      sender,
		Watcher:     watcher,
		VerifyToken: verifyToken,
		AppSecret:   appSecret,
	}
}

// Verify answers Meta's webhook subscription handshake.
func (wc *WhatsAppController) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == wc.VerifyToken {
		return c.SendString(challenge)
	}
	return c.SendStatus(fiber.StatusForbidden)
}

// Receive handles one webhook delivery, which may batch several messages.
// Meta always gets a 200; a non-200 would make it re-deliver the batch and
// replay conversations.
func (wc *WhatsAppController) Receive(c *fiber.Ctx) error {
	body := c.Body()

	if wc.AppSecret != "" && !wc.verifySignature(body, c.Get("X-Hub-Signature-256")) {
		logger.Warning("WhatsApp webhook signature mismatch")
		return c.SendStatus(fiber.StatusForbidden)
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error("Failed to parse WhatsApp webhook payload", err)
		return c.SendString("EVENT_RECEIVED")
	}

	for _, msg := range payload.incomingMessages() {
		wc.handleMessage(c.Context(), msg)
	}

	return c.SendString("EVENT_RECEIVED")
}

func (wc *WhatsAppController) handleMessage(ctx context.Context, msg botTypes.IncomingMessage) {
	if wc.Watcher != nil && msg.Text != "" {
		wc.Watcher.Scan(msg.From, msg.Text)
	}

	resp := wc.Engine.HandleMessage(ctx, msg.From, msg.Text, msg.InteractiveID)

	if !wc.Sender.SendResponse(ctx, msg.From, resp) {
		logger.Error("Failed to deliver bot response to "+msg.From, nil)
	}
}

func (wc *WhatsAppController) verifySignature(body []byte, header string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(wc.AppSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(header, prefix)))
}
