package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

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

// User represents a shop account. Customers and admins share the table.
type User struct {
	BaseModel
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email" gorm:"unique;not null"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Role         string     `json:"role" gorm:"not null;default:user"`
	Status       string     `json:"status" gorm:"not null;default:active"`
	ResetToken   string     `json:"-" gorm:"index"`
	ResetExpires *time.Time `json:"-"`

	// Computed fields (populated at runtime, not persisted)
	Name string `json:"name" gorm:"-"`
}

// AfterFind populates computed fields after loading from database
func (u *User) AfterFind(tx *gorm.DB) error {
	u.Name = u.fullName()
	return nil
}

// AfterSave keeps the computed name current for records returned straight after a write
func (u *User) AfterSave(tx *gorm.DB) error {
	u.Name = u.fullName()
	return nil
}

// fullName is family name first, the way the shop addresses customers
func (u *User) fullName() string {
	return strings.TrimSpace(u.LastName + " " + u.FirstName)
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Category groups snacks
type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"unique;not null"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Snack is a catalog product
type Snack struct {
	BaseModel
	SnackName   string   `json:"snackName" gorm:"not null;index"`
	Description string   `json:"description"`
	Price       float64  `json:"price" gorm:"not null"`
	Stock       int      `json:"stock" gorm:"not null;default:0"`
	CategoryID  string   `json:"categoryId" gorm:"index"`
	Discount    float64  `json:"discount" gorm:"not null;default:0"`
	Images      []string `json:"images" gorm:"serializer:json;type:text"`
	SoldCount   int      `json:"soldCount" gorm:"not null;default:0"`

	// Computed fields (populated at runtime, not persisted)
	Revenue float64 `json:"revenue,omitempty" gorm:"-"`
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

// orderTransitions lists the statuses each status may move to. Completed and cancelled orders are final.
var orderTransitions = map[string][]string{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipping, OrderCancelled},
	OrderShipping:   {OrderCompleted, OrderCancelled},
}

// ErrInvalidTransition is returned when an order cannot move to the requested status
var ErrInvalidTransition = errors.New("invalid order status transition")

// OrderStatuses returns every known order status
func OrderStatuses() []string {
	return []string{OrderPending, OrderProcessing, OrderShipping, OrderCompleted, OrderCancelled}
}

// CheckTransition validates a status change
func CheckTransition(from, to string) error {
	if !slices.Contains(orderTransitions[from], to) {
		return fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// OrderItem is one line of an order, stored inline with the order
type OrderItem struct {
	SnackID  string  `json:"snackId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is a customer order
type Order struct {
	BaseModel
	UserID          *string     `json:"userId,omitempty" gorm:"type:varchar(26);index"`
	Items           []OrderItem `json:"items" gorm:"serializer:json;type:text"`
	TotalAmount     float64     `json:"totalAmount" gorm:"not null"`
	ShippingFee     float64     `json:"shippingFee" gorm:"not null;default:0"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	PaymentStatus   string      `json:"paymentStatus" gorm:"not null;default:pending"`
	Status          string      `json:"status" gorm:"not null;default:pending;index"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE"`
}

// Coupon discount types
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a discount code
type Coupon struct {
	BaseModel
	Code          string    `json:"code" gorm:"unique;not null"`
	DiscountType  string    `json:"discountType" gorm:"not null"`
	DiscountValue float64   `json:"discountValue" gorm:"not null"`
	MinPurchase   float64   `json:"minPurchase" gorm:"not null;default:0"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate" gorm:"index"`
	IsActive      bool      `json:"isActive" gorm:"not null;default:true"`
	Description   string    `json:"description"`
}

// Usable explains why a coupon cannot be applied at now, or returns "" when it can
func (c *Coupon) Usable(now time.Time) string {
	switch {
	case !c.IsActive:
		return "Coupon is not active"
	case now.Before(c.StartDate):
		return "Coupon is not valid yet"
	case now.After(c.EndDate):
		return "Coupon has expired"
	default:
		return ""
	}
}

// Review statuses
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Review is a customer product review
type Review struct {
	BaseModel
	SnackID string `json:"snackId" gorm:"type:varchar(26);not null;index"`
	UserID  string `json:"userId" gorm:"type:varchar(26);not null;index"`
	Rating  int    `json:"rating" gorm:"not null"`
	Comment string `json:"comment"`
	Status  string `json:"status" gorm:"not null;default:pending"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &Category{}, &Snack{}, &Order{}, &Coupon{}, &Review{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
