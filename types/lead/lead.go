package lead

// CreateRequest is the payload for capturing a new lead.
type CreateRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Interest string `json:"interest,omitempty"`
	Source   string `json:"source,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// UpdateRequest carries the mutable lead fields; nil means unchanged.
type UpdateRequest struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}
