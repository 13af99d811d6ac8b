package client

import (
	"strings"
	"time"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User account statuses
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// User is an account as returned by the API. The session user and the admin user list share it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// DisplayName returns the best available human name
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if full := strings.TrimSpace(u.LastName + " " + u.FirstName); full != "" {
		return full
	}
	return u.Email
}

// IsAdmin reports whether the user has the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Credentials is what the login form collects
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Product is a snack in the catalog
type Product struct {
	ID          string    `json:"id"`
	SnackName   string    `json:"snackName"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CategoryID  string    `json:"categoryId"`
	Discount    float64   `json:"discount"`
	Images      []string  `json:"images"`
	SoldCount   int       `json:"soldCount,omitempty"`
	Revenue     float64   `json:"revenue,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// ProductInput is the body for creating or updating a product
type ProductInput struct {
	SnackName   string   `json:"snackName"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	CategoryID  string   `json:"categoryId"`
	Discount    float64  `json:"discount"`
	Images      []string `json:"images"`
}

// Category groups products
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Order statuses
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipping   = "shipping"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// Payment statuses
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// OrderCustomer is the customer summary embedded in an order
type OrderCustomer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// OrderItem is one line of an order
type OrderItem struct {
	SnackID  string  `json:"snackId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is a customer order
type Order struct {
	ID              string         `json:"id"`
	User            *OrderCustomer `json:"user,omitempty"`
	Items           []OrderItem    `json:"items"`
	TotalAmount     float64        `json:"totalAmount"`
	ShippingFee     float64        `json:"shippingFee"`
	ShippingAddress string         `json:"shippingAddress,omitempty"`
	PaymentMethod   string         `json:"paymentMethod,omitempty"`
	PaymentStatus   string         `json:"paymentStatus"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// CustomerName returns the customer's name or a placeholder for guest checkouts
func (o Order) CustomerName() string {
	if o.User == nil || o.User.Name == "" {
		return "Guest"
	}
	return o.User.Name
}

// OrderList is a page of orders
type OrderList struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

// OrderStatistics summarizes orders by status
type OrderStatistics struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"byStatus"`
	TotalRevenue float64        `json:"totalRevenue"`
}

// TopProduct is a best seller row
type TopProduct struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Image        []string `json:"image,omitempty"`
	TotalSold    int      `json:"totalSold"`
	TotalRevenue float64  `json:"totalRevenue"`
}

// CompletedStatistics is the revenue summary over completed orders
type CompletedStatistics struct {
	TotalRevenue         float64      `json:"totalRevenue"`
	TotalCompletedOrders int          `json:"totalCompletedOrders"`
	TopProducts          []TopProduct `json:"topProducts"`
}

// Coupon discount types
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a discount code
type Coupon struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	DiscountType  string    `json:"discountType"`
	DiscountValue float64   `json:"discountValue"`
	MinPurchase   float64   `json:"minPurchase"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	IsActive      bool      `json:"isActive"`
	Description   string    `json:"description"`
}

// CouponInput is the body for creating or updating a coupon
type CouponInput struct {
	Code          string    `json:"code"`
	DiscountType  string    `json:"discountType"`
	DiscountValue float64   `json:"discountValue"`
	MinPurchase   float64   `json:"minPurchase"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	IsActive      bool      `json:"isActive"`
	Description   string    `json:"description"`
}

// CouponValidation is the answer to a validate request
type CouponValidation struct {
	Valid   bool    `json:"valid"`
	Message string  `json:"message,omitempty"`
	Coupon  *Coupon `json:"coupon,omitempty"`
}

// UserInput is the body for creating or updating a user from the admin console
type UserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Password  string `json:"password,omitempty"`
}

// Review statuses
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Review is a customer product review
type Review struct {
	ID        string    `json:"id"`
	SnackID   string    `json:"snackId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// SearchResult groups matches across resources
type SearchResult struct {
	Products []Product  `json:"products"`
	Orders   []Order    `json:"orders"`
	Users    []User     `json:"users"`
	Coupons  []Coupon   `json:"coupons"`
	Category []Category `json:"categories"`
}

// OverviewStats is the dashboard headline numbers
type OverviewStats struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalOrders    int     `json:"totalOrders"`
	TotalProducts  int     `json:"totalProducts"`
	TotalCustomers int     `json:"totalCustomers"`
}

// RevenuePoint is revenue for one bucket of a period
type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// RevenueStats is revenue over a date range
type RevenueStats struct {
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	Total     float64        `json:"total"`
	Points    []RevenuePoint `json:"points"`
}
