package bot

// Platform limits for interactive list messages.
const (
	MaxButtons        = 3
	MaxListTitleLen   = 24
	MaxListDescLen    = 72
	MaxListRowsPerMsg = 10
)

// IncomingMessage is the channel-agnostic shape of one inbound WhatsApp
// message after the webhook payload has been unwrapped.
type IncomingMessage struct {
	From          string `json:"from"` // sender phone number
	Text          string `json:"text"`
	Type          string `json:"type"`                     // text or interactive
	InteractiveID string `json:"interactive_id,omitempty"` // button or list row id
}

// Button is a quick-reply button. At most MaxButtons per response.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListItem is one selectable row of an interactive list.
type ListItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`                 // truncated to MaxListTitleLen
	Description string `json:"description,omitempty"` // truncated to MaxListDescLen
}

// Response is what the bot engine hands back for delivery. Text is always
// set; at most one of Buttons or List may be populated.
type Response struct {
	Text      string     `json:"text"`
	Buttons   []Button   `json:"buttons,omitempty"`
	List      []ListItem `json:"list,omitempty"`
	ListTitle string     `json:"list_title,omitempty"` // section header when List is set
}

// HasButtons reports whether the response is an interactive-button message.
func (r *Response) HasButtons() bool {
	return len(r.Buttons) > 0
}

// HasList reports whether the response is an interactive-list message.
func (r *Response) HasList() bool {
	return len(r.List) > 0
}
