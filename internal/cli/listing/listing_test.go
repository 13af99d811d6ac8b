package listing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	p := Paginate(items, 2, 3)
	assert.Equal(t, []int{4, 5, 6}, p.Items)
	assert.Equal(t, 7, p.Total)
	assert.Equal(t, 3, p.Pages)

	p = Paginate(items, 3, 3)
	assert.Equal(t, []int{7}, p.Items)

	p = Paginate(items, 9, 3)
	assert.Empty(t, p.Items)
	assert.Equal(t, 7, p.Total)

	p = Paginate(items, 0, 0)
	assert.Len(t, p.Items, 7)
	assert.Equal(t, 1, p.Page)
}

func TestPaginate_HugeValues(t *testing.T) {
	items := []int{1, 2, 3}

	p := Paginate(items, math.MaxInt/5, 10)
	assert.Empty(t, p.Items)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 1, p.Pages)

	p = Paginate(items, 1, math.MaxInt)
	assert.Equal(t, []int{1, 2, 3}, p.Items)
	assert.Equal(t, 1, p.Pages)

	p = Paginate([]int{}, 1, 10)
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.Pages)
}

func TestSortBy_Stable(t *testing.T) {
	type row struct {
		name  string
		price float64
	}
	rows := []row{{"b", 2}, {"a", 1}, {"c", 2}}

	asc := SortBy(rows, func(r row) float64 { return r.price }, false)
	assert.Equal(t, []row{{"a", 1}, {"b", 2}, {"c", 2}}, asc)

	desc := SortBy(rows, func(r row) float64 { return r.price }, true)
	assert.Equal(t, []row{{"b", 2}, {"c", 2}, {"a", 1}}, desc)

	// Input untouched
	assert.Equal(t, "b", rows[0].name)
}

func TestDayRange_InclusiveDays(t *testing.T) {
	loc := time.UTC
	r := DayRange{
		From: time.Date(2024, 3, 1, 15, 0, 0, 0, loc),
		To:   time.Date(2024, 3, 10, 8, 0, 0, 0, loc),
	}

	assert.True(t, r.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, loc)))
	assert.True(t, r.Contains(time.Date(2024, 3, 10, 23, 59, 0, 0, loc)))
	assert.False(t, r.Contains(time.Date(2024, 2, 29, 23, 59, 0, 0, loc)))
	assert.False(t, r.Contains(time.Date(2024, 3, 11, 0, 0, 0, 0, loc)))

	open := DayRange{From: time.Date(2024, 3, 1, 0, 0, 0, 0, loc)}
	assert.True(t, open.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, loc)))
}

func TestProducts(t *testing.T) {
	items := []client.Product{
		{ID: "1", SnackName: "Bánh gạo", Description: "Rice cracker", CategoryID: "c1"},
		{ID: "2", SnackName: "Chips", Description: "Potato", CategoryID: "c2"},
		{ID: "3", SnackName: "Kẹo", Description: "Rice candy", CategoryID: "c2"},
	}

	assert.Len(t, Products(items, ProductFilter{}), 3)
	assert.Len(t, Products(items, ProductFilter{CategoryID: "all"}), 3)
	assert.Len(t, Products(items, ProductFilter{Search: "RICE"}), 2)

	got := Products(items, ProductFilter{Search: "rice", CategoryID: "c2"})
	assert.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}

func TestCoupons(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC) }
	yes := true
	items := []client.Coupon{
		{Code: "SUMMER", Description: "Summer sale", StartDate: day(1), EndDate: day(5), IsActive: true},
		{Code: "TET", Description: "New year", StartDate: day(10), EndDate: day(20), IsActive: false},
		{Code: "LONG", Description: "All month", StartDate: day(1), EndDate: day(30), IsActive: true},
	}

	assert.Len(t, Coupons(items, CouponFilter{Search: "sale"}), 1)
	assert.Len(t, Coupons(items, CouponFilter{Active: &yes}), 2)

	// Start or end inside the range, so a coupon spanning it is excluded
	got := Coupons(items, CouponFilter{Range: DayRange{From: day(4), To: day(12)}})
	assert.Len(t, got, 2)
	assert.Equal(t, "SUMMER", got[0].Code)
	assert.Equal(t, "TET", got[1].Code)
}

func TestCouponStatus(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	c := client.Coupon{StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 1), IsActive: true}

	assert.Equal(t, CouponActive, CouponStatus(c, now))

	c.IsActive = false
	assert.Equal(t, CouponInactive, CouponStatus(c, now))

	assert.Equal(t, CouponExpired, CouponStatus(c, now.AddDate(0, 0, 2)))
	assert.Equal(t, CouponScheduled, CouponStatus(c, now.AddDate(0, 0, -2)))
}

func TestUsers(t *testing.T) {
	items := []client.User{
		{ID: "1", FirstName: "An", LastName: "Nguyễn", Email: "an@shop.vn", Phone: "0901", Role: client.RoleAdmin, Status: client.UserStatusActive},
		{ID: "2", FirstName: "Bình", LastName: "Trần", Email: "binh@mail.com", Role: client.RoleUser, Status: client.UserStatusBlocked},
	}

	assert.Len(t, Users(items, UserFilter{Search: "nguyễn an", Field: FieldName}), 1)
	assert.Len(t, Users(items, UserFilter{Search: "SHOP.VN", Field: FieldEmail}), 1)
	assert.Len(t, Users(items, UserFilter{Search: "0901", Field: FieldPhone}), 1)
	assert.Len(t, Users(items, UserFilter{Status: client.UserStatusBlocked}), 1)
	assert.Empty(t, Users(items, UserFilter{Search: "0901", Field: FieldPhone, Role: client.RoleUser}))

	sorted := SortUsers(items, "name", false)
	assert.Equal(t, "1", sorted[0].ID)
}

func TestOrders(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	items := []client.Order{
		{ID: "665f0a1b2c3d4e5f6a7b8c9d", User: &client.OrderCustomer{Name: "Lan", Phone: "0912"}, Status: client.OrderPending, CreatedAt: at},
		{ID: "665f0a1b2c3d4e5f6a7b8caa", Status: client.OrderCompleted, CreatedAt: at.AddDate(0, 0, 3)},
	}

	assert.Len(t, Orders(items, OrderFilter{Search: "lan"}), 1)
	assert.Len(t, Orders(items, OrderFilter{Search: "guest"}), 1)
	assert.Len(t, Orders(items, OrderFilter{Search: "0912"}), 1)
	assert.Len(t, Orders(items, OrderFilter{Status: client.OrderCompleted}), 1)
	assert.Len(t, Orders(items, OrderFilter{Range: DayRange{From: at, To: at}}), 1)
}
