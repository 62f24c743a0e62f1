package shop

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format carries the display settings columns depend on.
type Format struct {
	Currency string
	Now      func() time.Time
}

// DefaultFormat uses a dollar sign and the wall clock.
func DefaultFormat() Format {
	return Format{Currency: "$", Now: time.Now}
}

// FormatFor derives the format from saved settings.
func FormatFor(s Settings) Format {
	f := DefaultFormat()
	if s.CurrencySymbol != "" {
		f.Currency = s.CurrencySymbol
	}
	return f
}

// Money formats an amount with two decimals and digit grouping.
func (f Format) Money(amount float64) string {
	return f.Currency + printer.Sprintf("%.2f", amount)
}

// Percent formats a rate such as 12.5 as "12.5%".
func Percent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}

// Stars renders a 1-5 rating.
func Stars(rating int64) string {
	if rating < 0 {
		rating = 0
	}
	return strings.Repeat("★", int(min(rating, 5)))
}

// Ago formats t relative to now, e.g. "3 days ago".
func (f Format) Ago(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return humanize.RelTime(t, now(), "ago", "from now")
}

// Count formats an integer with digit grouping.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
