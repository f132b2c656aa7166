package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{"lina@example.com", "a.b+tag@sub.domain.io", " padded@example.com "}
	for _, s := range valid {
		require.True(t, IsValidEmail(s), s)
	}

	invalid := []string{"", "no-at-sign", "@missing.local", "user@", "user@tld", "two@@example.com"}
	for _, s := range invalid {
		require.False(t, IsValidEmail(s), s)
	}
}

func TestNormalizePhone(t *testing.T) {
	require.Equal(t, "+971501234567", NormalizePhone("+971 50 123 4567"))
	require.Equal(t, "971501234567", NormalizePhone("971-50-123-4567"))
	require.Equal(t, "971501234567", NormalizePhone(" 971 (50) 123.4567 "))
	require.Equal(t, "", NormalizePhone("no digits"))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", Truncate("short", 24))
	require.Equal(t, "exactly", Truncate("exactly", 7))

	cut := Truncate("a very long class name that exceeds the limit", 24)
	require.Equal(t, 24, len([]rune(cut)))
	require.Equal(t, "…", string([]rune(cut)[23]))

	// Rune-safe: multibyte input must not split mid-character.
	arabic := Truncate("ورشة المعكرونة الطازجة للكبار والصغار", 10)
	require.Equal(t, 10, len([]rune(arabic)))
}

func TestCentsConversion(t *testing.T) {
	require.Equal(t, 350.0, CentsToAmount(35000))
	require.Equal(t, 0.5, CentsToAmount(50))
	require.EqualValues(t, 35000, AmountToCents(350))
	require.EqualValues(t, 12999, AmountToCents(129.99))
}

func TestResolvePeriodExplicitDates(t *testing.T) {
	r, err := ResolvePeriod("month", "2026-08-01", "2026-08-15")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), r.Start)
	// End date is inclusive in the query string, exclusive in the range.
	require.Equal(t, time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC), r.End)
}

func TestResolvePeriodEndBeforeStart(t *testing.T) {
	_, err := ResolvePeriod("", "2026-08-15", "2026-08-01")
	require.Error(t, err)
}

func TestResolvePeriodNamedWindows(t *testing.T) {
	now := time.Now()

	r, err := ResolvePeriod("today", "", "")
	require.NoError(t, err)
	require.False(t, now.Before(r.Start))
	require.False(t, now.After(r.End))

	// Default is the current month.
	r, err = ResolvePeriod("", "", "")
	require.NoError(t, err)
	require.Equal(t, now.Month(), r.Start.Month())

	_, err = ResolvePeriod("fortnight", "", "")
	require.Error(t, err)
}

func TestNewQRTokensAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := NewQRToken()
		require.NotEmpty(t, token)
		require.False(t, seen[token])
		seen[token] = true
	}
}
