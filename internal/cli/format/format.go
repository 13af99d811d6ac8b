// Package format renders values the way the shop's admins read them: prices in dong with dot
// thousands separators, short order numbers, day-first dates.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
)

const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"
)

// Price formats an amount in dong, e.g. 1234567 -> "1.234.567đ"
func Price(v float64) string {
	return humanize.FormatFloat("#.###,", v) + "đ"
}

// Discount formats a coupon's value according to its type
func Discount(c client.Coupon) string {
	if c.DiscountType == client.DiscountPercentage {
		pattern := "#.###,"
		if c.DiscountValue != math.Trunc(c.DiscountValue) {
			pattern = "#.###,##"
		}
		return humanize.FormatFloat(pattern, c.DiscountValue) + "%"
	}
	return Price(c.DiscountValue)
}

// OrderNumber is the short form of an order ID shown in lists: the last six characters, upper-cased
func OrderNumber(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return "#" + strings.ToUpper(id)
}

// Date formats a day, or "-" for the zero time
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(DateLayout)
}

// DateTime formats a timestamp, or "-" for the zero time
func DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(DateTimeLayout)
}

// Ago formats a timestamp relative to now, e.g. "3 days ago"
func Ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// Units formats a count of items sold
func Units(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// Truncate shortens s to n runes, marking the cut with an ellipsis
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
