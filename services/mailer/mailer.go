package mailer

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	bookingModel "culinary-booking/models/booking"
	"culinary-booking/utils"

	"gopkg.in/gomail.v2"
)

// Service sends transactional mail over SMTP.
type Service struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewService() *Service {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return &Service{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

// SendBookingConfirmation emails the customer their confirmation with one
// check-in QR payload per guest. The payload is AES-encrypted so the code
// content is opaque outside the check-in screen.
func (s *Service) SendBookingConfirmation(booking *bookingModel.Booking, guests []bookingModel.BookingGuest) error {
	if booking.CustomerEmail == "" {
		return fmt.Errorf("booking %d has no customer email", booking.ID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", booking.CustomerName)
	fmt.Fprintf(&b, "Your booking for %s is confirmed! 🎉\n\n", booking.ClassName)
	fmt.Fprintf(&b, "Booking #%d\nGuests: %d\nSessions: %d\nPaid: $%.2f\n\n",
		booking.ID, booking.NumberOfGuests, booking.SessionsBooked, booking.AmountPaid)

	if len(guests) > 0 {
		b.WriteString("Check-in codes (one per guest):\n")
		for _, guest := range guests {
			payload, err := qrPayload(booking.ID, &guest)
			if err != nil {
				// Fall back to the raw token; check-in accepts both.
				payload = guest.QRToken
			}
			fmt.Fprintf(&b, "  %s: %s\n", guest.Name, payload)
		}
		b.WriteString("\n")
	}

	b.WriteString("See you in the kitchen!\nThe Culinary Studio\n")

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", booking.CustomerEmail)
	m.SetHeader("Subject", fmt.Sprintf("Booking confirmed: %s", booking.ClassName))
	m.SetBody("text/plain", b.String())

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	return d.DialAndSend(m)
}

func qrPayload(bookingID uint, guest *bookingModel.BookingGuest) (string, error) {
	raw, err := json.Marshal(map[string]interface{}{
		"booking_id": bookingID,
		"guest_id":   guest.ID,
		"qr_token":   guest.QRToken,
	})
	if err != nil {
		return "", err
	}
	return utils.EncryptData(string(raw))
}
