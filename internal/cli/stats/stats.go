// Package stats computes the dashboard figures that are derived on the client.
package stats

import (
	"fmt"
	"time"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/listing"
)

// DateLayout is the API's date query format
const DateLayout = "2006-01-02"

// Periods
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// Range is a reporting window, both days inclusive
type Range struct {
	From    time.Time
	To      time.Time
	GroupBy string
}

// Query returns the range as API query parameters
func (r Range) Query() client.RangeQuery {
	return client.RangeQuery{
		StartDate: r.From.Format(DateLayout),
		EndDate:   r.To.Format(DateLayout),
		GroupBy:   r.GroupBy,
	}
}

// Days returns the inclusive range as a listing filter
func (r Range) Days() listing.DayRange {
	return listing.DayRange{From: r.From, To: r.To}
}

// ForPeriod returns the window ending today for a named period. Weeks start on Monday.
func ForPeriod(period string, now time.Time) (Range, error) {
	today := listing.StartOfDay(now)

	var from time.Time
	switch period {
	case PeriodToday, "":
		from = today
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		from = today.AddDate(0, 0, -offset)
	case PeriodMonth:
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	case PeriodYear:
		from = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
	default:
		return Range{}, fmt.Errorf("unknown period %q (want today, week, month or year)", period)
	}

	return Range{From: from, To: today, GroupBy: groupBy(from, today)}, nil
}

// Between parses an explicit YYYY-MM-DD range
func Between(from, to string, loc *time.Location) (Range, error) {
	f, err := time.ParseInLocation(DateLayout, from, loc)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start date %q: %w", from, err)
	}
	t, err := time.ParseInLocation(DateLayout, to, loc)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end date %q: %w", to, err)
	}
	if t.Before(f) {
		return Range{}, fmt.Errorf("end date %s is before start date %s", to, from)
	}
	return Range{From: f, To: t, GroupBy: groupBy(f, t)}, nil
}

func groupBy(from, to time.Time) string {
	days := int(to.Sub(from).Hours()/24) + 1
	switch {
	case days <= 31:
		return "day"
	case days <= 92:
		return "week"
	default:
		return "month"
	}
}

// Overview computes the headline numbers from raw products and orders. Revenue is the sum of
// order totals; customers are the distinct users who placed an order.
func Overview(products []client.Product, orders []client.Order) client.OverviewStats {
	customers := make(map[string]struct{})
	var revenue float64
	for _, o := range orders {
		revenue += o.TotalAmount
		if o.User != nil && o.User.ID != "" {
			customers[o.User.ID] = struct{}{}
		}
	}

	return client.OverviewStats{
		TotalRevenue:   revenue,
		TotalOrders:    len(orders),
		TotalProducts:  len(products),
		TotalCustomers: len(customers),
	}
}

// TopProducts returns the n best sellers by units sold
func TopProducts(products []client.Product, n int) []client.Product {
	sorted := listing.SortBy(products, func(p client.Product) int { return p.SoldCount }, true)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// StatusCounts counts orders per status
func StatusCounts(orders []client.Order) map[string]int {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}
