package lead

import (
	"time"
)

// LeadStatus represents the follow-up state of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

func (ls LeadStatus) IsValid() bool {
	switch ls {
	case LeadStatusNew, LeadStatusContacted, LeadStatusConverted, LeadStatusLost:
		return true
	default:
		return false
	}
}

// Lead is a prospective customer captured from the website contact form
// or a WhatsApp conversation that did not finish a booking.
type Lead struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Phone string `gorm:"type:varchar(20);index" json:"phone,omitempty"`
	Email string `gorm:"type:varchar(255);index" json:"email,omitempty"`

	Interest string     `gorm:"type:varchar(255)" json:"interest,omitempty"` // class category or service name
	Source   string     `gorm:"type:varchar(20);not null;default:website" json:"source"`
	Status   LeadStatus `gorm:"size:20;not null;default:new" json:"status"`
	Notes    string     `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName sets the table name for the Lead model
func (Lead) TableName() string {
	return "leads"
}
