package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money renders an amount the way every reply shows it: $149.90.
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Date formats a unix timestamp as YYYY-MM-DD in loc.
func Date(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format("2006-01-02")
}

// DateTime formats a unix timestamp as YYYY-MM-DD HH:MM in loc.
func DateTime(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format("2006-01-02 15:04")
}

// Location loads an IANA zone and falls back to UTC.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
