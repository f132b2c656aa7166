package whatsapp

import (
	"time"
)

// BookingLog is the audit row appended for every booking created through
// the WhatsApp bot.
type BookingLog struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID uint   `gorm:"not null;index" json:"booking_id"`
	Phone     string `gorm:"type:varchar(20);not null;index" json:"phone"`

	ClassID   string `gorm:"type:varchar(255);not null" json:"class_id"`
	ClassName string `gorm:"type:varchar(255);not null" json:"class_name"`
	Guests    int    `gorm:"not null;default:1" json:"guests"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the BookingLog model
func (BookingLog) TableName() string {
	return "whatsapp_bookings"
}
