package invoice_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/billbook/billbook/internal/invoice"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name  string
		date  time.Time
		count int
		want  string
	}{
		{name: "FirstOfYear", date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), count: 0, want: "INV-2024-0001"},
		{name: "Fifth", date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), count: 4, want: "INV-2024-0005"},
		{name: "LastDayOfYear", date: time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC), count: 41, want: "INV-2023-0042"},
		{name: "BeyondFourDigits", date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), count: 12345, want: "INV-2025-12346"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, invoice.FormatNumber(tt.date, tt.count))
		})
	}
}

func TestFormatNumber_SerialWithinYear(t *testing.T) {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	seen := make(map[string]bool)

	for count := range 50 {
		n := invoice.FormatNumber(date, count)
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}

	assert.Equal(t, "INV-2024-0050", invoice.FormatNumber(date, 49))
}

func TestFallbackNumber(t *testing.T) {
	now := time.UnixMilli(1_717_171_234_567).UTC()

	got := invoice.FallbackNumber(now)

	assert.Equal(t, "INV-2024-234567", got)
	assert.Regexp(t, regexp.MustCompile(`^INV-\d{4}-\d{6}$`), got)
}

func TestFallbackNumber_PadsLowMillis(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_042).UTC()

	assert.Equal(t, "INV-2023-000042", invoice.FallbackNumber(now))
}

func TestYearBounds(t *testing.T) {
	start, end := invoice.YearBounds(2024)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}
