package invoice

import (
	"fmt"
	"time"
)

// FormatNumber builds the identifier for the next invoice of date's year,
// given how many invoices were already numbered in that year.
func FormatNumber(date time.Time, countInYear int) string {
	return fmt.Sprintf("INV-%d-%04d", date.Year(), countInYear+1)
}

// FallbackNumber builds an identifier from the clock when the yearly
// sequence cannot be read. Uniqueness is not guaranteed; storage rejects
// collisions.
func FallbackNumber(now time.Time) string {
	return fmt.Sprintf("INV-%d-%06d", now.Year(), now.UnixMilli()%1_000_000)
}

// YearBounds returns the half-open range [Jan 1 of year, Jan 1 of year+1) in UTC.
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	return start, start.AddDate(1, 0, 0)
}
