package cms

// Class is a cooking class as stored in the headless CMS. The CMS is the
// authority on capacity; SpotsAvailable read here can go stale, so booking
// flows re-fetch immediately before creating a booking.
type Class struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	TotalSessions  int     `json:"total_sessions"`
	SpotsAvailable int     `json:"spots_available"`
	Schedule       string  `json:"schedule"`
}

// HasCapacity reports whether the class can take n more guests.
func (c *Class) HasCapacity(n int) bool {
	return c.SpotsAvailable >= n
}

type classListResponse struct {
	Data []Class `json:"data"`
}

type classResponse struct {
	Data Class `json:"data"`
}

type spotsUpdateRequest struct {
	Delta int `json:"delta"`
}
