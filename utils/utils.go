package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	reportTypes "culinary-booking/types/reports"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jinzhu/now"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether s looks like a deliverable email address.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

var phoneCleanRegex = regexp.MustCompile(`[^\d+]`)

// NormalizePhone strips separators so the same sender always maps to the
// same session key and booking rows.
func NormalizePhone(phone string) string {
	return phoneCleanRegex.ReplaceAllString(strings.TrimSpace(phone), "")
}

// Truncate shortens s to at most max runes, appending an ellipsis when cut.
// Used to keep list titles and descriptions inside the messaging platform's
// limits.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

// CentsToAmount converts provider cents into major currency units.
func CentsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

// AmountToCents converts major currency units into provider cents.
func AmountToCents(amount float64) int64 {
	return int64(amount*100 + 0.5)
}

// NewQRToken returns a fresh opaque check-in token.
func NewQRToken() string {
	return uuid.NewString()
}

// ResolvePeriod maps a named period (today, week, month, year) or an explicit
// start/end pair (2006-01-02) onto a concrete reporting range. Explicit dates
// win over the named period. Defaults to the current month.
func ResolvePeriod(period, start, end string) (reportTypes.Range, error) {
	if start != "" || end != "" {
		s, err := time.Parse("2006-01-02", start)
		if err != nil {
			return reportTypes.Range{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		e, err := time.Parse("2006-01-02", end)
		if err != nil {
			return reportTypes.Range{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		if e.Before(s) {
			return reportTypes.Range{}, fmt.Errorf("end date before start date")
		}
		return reportTypes.Range{Start: s, End: e.AddDate(0, 0, 1)}, nil
	}

	n := now.New(time.Now())
	switch period {
	case "today":
		return reportTypes.Range{Start: n.BeginningOfDay(), End: n.EndOfDay()}, nil
	case "week":
		return reportTypes.Range{Start: n.BeginningOfWeek(), End: n.EndOfWeek()}, nil
	case "", "month":
		return reportTypes.Range{Start: n.BeginningOfMonth(), End: n.EndOfMonth()}, nil
	case "year":
		return reportTypes.Range{Start: n.BeginningOfYear(), End: n.EndOfYear()}, nil
	default:
		return reportTypes.Range{}, fmt.Errorf("unknown period %q", period)
	}
}

// GetUsername extracts the username from the JWT claims attached by the auth
// middleware; falls back to "system" for unauthenticated surfaces.
func GetUsername(c *fiber.Ctx) string {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		if m, ok := c.Locals("user").(map[string]interface{}); ok {
			if username, ok := m["username"].(string); ok && username != "" {
				return username
			}
		}
		return "system"
	}
	if username, ok := claims["username"].(string); ok && username != "" {
		return username
	}
	return "system"
}
