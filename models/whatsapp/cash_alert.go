package whatsapp

import (
	"time"
)

// CashAlert records an inbound WhatsApp message that mentioned a cash
// payment. Alerts are persisted for the admin dashboard and broadcast on
// the monitor websocket as they happen.
type CashAlert struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	Phone string `gorm:"type:varchar(20);not null;index" json:"phone"`

	// Message keeps only a bounded excerpt of the inbound text.
	Message string `gorm:"type:text;not null" json:"message"`
	Keyword string `gorm:"type:varchar(50);not null" json:"keyword"`

	Acknowledged bool `gorm:"default:false" json:"acknowledged"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the CashAlert model
func (CashAlert) TableName() string {
	return "cash_alerts"
}
