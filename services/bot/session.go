package bot

import (
	"time"
)

// Step is the current stage of a WhatsApp booking conversation.
type Step string

const (
	StepIdle           Step = "idle"
	StepBrowsing       Step = "browsing"
	StepSelectingClass Step = "selecting_class"
	StepCollectingInfo Step = "collecting_info"
	StepConfirming     Step = "confirming"
)

// Field is the explicit cursor for which collecting_info answer comes next.
// Tracking it directly avoids inferring the expected field from which
// session fields happen to be empty.
type Field string

const (
	FieldNone  Field = ""
	FieldName  Field = "name"
	FieldEmail Field = "email"
)

// SessionTTL is the inactivity window after which a conversation is
// considered abandoned and restarts from idle on next contact.
const SessionTTL = 30 * time.Minute

// Session is the per-phone-number conversation state. It lives in the
// session store as JSON, never in the database.
type Session struct {
	Phone string `json:"phone"`
	Step  Step   `json:"step"`

	SelectedClassID       string  `json:"selected_class_id,omitempty"`
	SelectedClassName     string  `json:"selected_class_name,omitempty"`
	SelectedClassPrice    float64 `json:"selected_class_price,omitempty"`
	SelectedClassSessions int     `json:"selected_class_sessions,omitempty"`
	SelectedClassSpots    int     `json:"selected_class_spots,omitempty"`

	NumberOfGuests int    `json:"number_of_guests,omitempty"`
	UserName       string `json:"user_name,omitempty"`
	UserEmail      string `json:"user_email,omitempty"`

	AwaitingField Field     `json:"awaiting_field,omitempty"`
	LastActivity  time.Time `json:"last_activity"`
}

// NewSession returns a fresh idle session for the given phone number.
func NewSession(phone string) *Session {
	return &Session{
		Phone:        phone,
		Step:         StepIdle,
		LastActivity: time.Now(),
	}
}

// IsExpired reports whether the session passed its inactivity window.
// Expiry is checked on read; the Redis TTL is only a cleanup backstop.
func (s *Session) IsExpired() bool {
	return time.Since(s.LastActivity) > SessionTTL
}

// Reset clears all conversation progress and returns the session to idle.
func (s *Session) Reset() {
	*s = Session{
		Phone:        s.Phone,
		Step:         StepIdle,
		LastActivity: time.Now(),
	}
}
