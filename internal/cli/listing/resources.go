package listing

import (
	"strings"
	"time"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
)

// ProductFilter narrows the product list
type ProductFilter struct {
	Search     string // name or description
	CategoryID string // empty or "all" keeps every category
}

// Products applies f
func Products(items []client.Product, f ProductFilter) []client.Product {
	return Filter(items, func(p client.Product) bool {
		if f.CategoryID != "" && f.CategoryID != "all" && p.CategoryID != f.CategoryID {
			return false
		}
		return Contains(p.SnackName, f.Search) || Contains(p.Description, f.Search)
	})
}

// SortProducts sorts by name, price, stock or sold
func SortProducts(items []client.Product, by string, desc bool) []client.Product {
	switch by {
	case "price":
		return SortBy(items, func(p client.Product) float64 { return p.Price }, desc)
	case "stock":
		return SortBy(items, func(p client.Product) int { return p.Stock }, desc)
	case "sold":
		return SortBy(items, func(p client.Product) int { return p.SoldCount }, desc)
	case "name":
		return SortByFold(items, func(p client.Product) string { return p.SnackName }, desc)
	default:
		return items
	}
}

// CouponFilter narrows the coupon list
type CouponFilter struct {
	Search string   // code or description
	Range  DayRange // coupons starting or ending inside the range
	Active *bool
}

// Coupons applies f
func Coupons(items []client.Coupon, f CouponFilter) []client.Coupon {
	return Filter(items, func(c client.Coupon) bool {
		if !Contains(c.Code, f.Search) && !Contains(c.Description, f.Search) {
			return false
		}
		if !f.Range.IsZero() && !f.Range.Contains(c.StartDate) && !f.Range.Contains(c.EndDate) {
			return false
		}
		if f.Active != nil && c.IsActive != *f.Active {
			return false
		}
		return true
	})
}

// SortCoupons sorts by code, value, min, start or end
func SortCoupons(items []client.Coupon, by string, desc bool) []client.Coupon {
	switch by {
	case "code":
		return SortBy(items, func(c client.Coupon) string { return c.Code }, desc)
	case "value":
		return SortBy(items, func(c client.Coupon) float64 { return c.DiscountValue }, desc)
	case "min":
		return SortBy(items, func(c client.Coupon) float64 { return c.MinPurchase }, desc)
	case "start":
		return SortBy(items, func(c client.Coupon) int64 { return c.StartDate.Unix() }, desc)
	case "end":
		return SortBy(items, func(c client.Coupon) int64 { return c.EndDate.Unix() }, desc)
	default:
		return items
	}
}

// Coupon display statuses
const (
	CouponExpired   = "expired"
	CouponScheduled = "scheduled"
	CouponActive    = "active"
	CouponInactive  = "inactive"
)

// CouponStatus derives what a coupon means right now. Dates win over the active flag.
func CouponStatus(c client.Coupon, now time.Time) string {
	switch {
	case now.After(c.EndDate):
		return CouponExpired
	case now.Before(c.StartDate):
		return CouponScheduled
	case c.IsActive:
		return CouponActive
	default:
		return CouponInactive
	}
}

// User search fields
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldPhone = "phone"
)

// UserFilter narrows the user list
type UserFilter struct {
	Search string
	Field  string // name, email or phone
	Role   string
	Status string
}

// FullName is how users are named in lists: last name first
func FullName(u client.User) string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Name
	}
	return strings.TrimSpace(u.LastName + " " + u.FirstName)
}

// Users applies f
func Users(items []client.User, f UserFilter) []client.User {
	return Filter(items, func(u client.User) bool {
		if f.Role != "" && u.Role != f.Role {
			return false
		}
		if f.Status != "" && u.Status != f.Status {
			return false
		}
		switch f.Field {
		case FieldEmail:
			return Contains(u.Email, f.Search)
		case FieldPhone:
			return Contains(u.Phone, f.Search)
		default:
			return Contains(FullName(u), f.Search)
		}
	})
}

// SortUsers sorts by name, email or created
func SortUsers(items []client.User, by string, desc bool) []client.User {
	switch by {
	case "name":
		return SortByFold(items, FullName, desc)
	case "email":
		return SortByFold(items, func(u client.User) string { return u.Email }, desc)
	case "created":
		return SortBy(items, func(u client.User) int64 { return u.CreatedAt.Unix() }, desc)
	default:
		return items
	}
}

// OrderFilter narrows the order list
type OrderFilter struct {
	Search string // order ID, customer name or phone
	Status string
	Range  DayRange
}

// Orders applies f
func Orders(items []client.Order, f OrderFilter) []client.Order {
	return Filter(items, func(o client.Order) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		if !f.Range.IsZero() && !f.Range.Contains(o.CreatedAt) {
			return false
		}
		if f.Search == "" {
			return true
		}
		phone := ""
		if o.User != nil {
			phone = o.User.Phone
		}
		return Contains(o.ID, f.Search) || Contains(o.CustomerName(), f.Search) || strings.Contains(phone, f.Search)
	})
}
