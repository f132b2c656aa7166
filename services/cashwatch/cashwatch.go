package cashwatch

import (
	"encoding/json"
	"strings"
	"time"

	"culinary-booking/logger"
	whatsappModel "culinary-booking/models/whatsapp"

	"gorm.io/gorm"
)

// Broadcaster pushes an alert to every connected monitor client.
type Broadcaster interface {
	Broadcast(message []byte)
}

// cashKeywords are matched case-insensitively against inbound texts.
// Arabic terms cover the common ways customers offer to pay in cash.
var cashKeywords = []string{"cash", "كاش", "نقدي", "نقدا"}

const maxExcerptLen = 200

// Watcher scans inbound WhatsApp messages for cash-payment mentions,
// persists a CashAlert per hit and broadcasts it to the admin monitor
// socket. Scanning never blocks or fails the bot conversation.
type Watcher struct {
	db  *gorm.DB
	hub Broadcaster
}

func NewWatcher(db *gorm.DB, hub Broadcaster) *Watcher {
	return &Watcher{db: db, hub: hub}
}

// Scan checks one message and reports whether it triggered an alert.
func (w *Watcher) Scan(phone, text string) bool {
	lower := strings.ToLower(text)

	var matched string
	for _, kw := range cashKeywords {
		if strings.Contains(lower, kw) {
			matched = kw
			break
		}
	}
	if matched == "" {
		return false
	}

	excerpt := text
	if runes := []rune(excerpt); len(runes) > maxExcerptLen {
		excerpt = string(runes[:maxExcerptLen])
	}

	alert := whatsappModel.CashAlert{
		Phone:   phone,
		Message: excerpt,
		Keyword: matched,
	}
	if err := w.db.Create(&alert).Error; err != nil {
		logger.Error("Failed to persist cash alert for "+phone, err)
		// Still broadcast so the admin sees it live even if the row is lost.
	}

	if w.hub != nil {
		payload, err := json.Marshal(map[string]interface{}{
			"type":       "cash_alert",
			"id":         alert.ID,
			"phone":      phone,
			"keyword":    matched,
			"message":    excerpt,
			"created_at": time.Now().Format(time.RFC3339),
		})
		if err == nil {
			w.hub.Broadcast(payload)
		}
	}

	logger.Warning("Cash mention detected from " + phone)
	return true
}
