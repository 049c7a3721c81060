// ABOUTME: Display formatting shared by the CLI and the TUI
// ABOUTME: Money with thousands separators and relative timestamps

package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money renders an amount as $1,234.50
func Money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	if f < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -f)
	}
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// MoneyFloat renders a wire amount
func MoneyFloat(f float64) string {
	return Money(decimal.NewFromFloat(f))
}

// Count renders an integer with thousands separators
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Ago renders how long before now t happened. Under a minute reads as
// "just now".
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if now.Sub(t) < time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// SaleDate renders a sale timestamp in local time
func SaleDate(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// Units renders a quantity with a unit word
func Units(n int) string {
	if n == 1 {
		return "1 unit"
	}
	return fmt.Sprintf("%s units", Count(n))
}
