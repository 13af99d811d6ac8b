package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Demo credentials created by Seed
const (
	SeedAdminEmail    = "admin@snack.vn"
	SeedAdminPassword = "admin123"
	SeedUserEmail     = "khach@snack.vn"
	SeedUserPassword  = "user123"
)

// PasswordHasher hashes seed passwords. The auth package provides the real one.
type PasswordHasher func(string) (string, error)

// Seed fills an empty database with a demo admin, a customer and a small catalog.
// A database that already has users is left alone.
func Seed(db *gorm.DB, hash PasswordHasher, now time.Time) error {
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		adminHash, err := hash(SeedAdminPassword)
		if err != nil {
			return err
		}
		userHash, err := hash(SeedUserPassword)
		if err != nil {
			return err
		}

		admin := &User{FirstName: "Admin", LastName: "Snack", Email: SeedAdminEmail, Phone: "0900000000", PasswordHash: adminHash, Role: RoleAdmin, Status: UserStatusActive}
		customer := &User{FirstName: "An", LastName: "Nguyen", Email: SeedUserEmail, Phone: "0912345678", PasswordHash: userHash, Role: RoleUser, Status: UserStatusActive}
		if err := tx.Create([]*User{admin, customer}).Error; err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}

		chips := &Category{Name: "Chips", Description: "Crispy potato and cassava chips"}
		candy := &Category{Name: "Candy", Description: "Sweets and chewing gum"}
		dried := &Category{Name: "Dried fruit", Description: "Mango, jackfruit and more"}
		if err := tx.Create([]*Category{chips, candy, dried}).Error; err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}

		snacks := []*Snack{
			{SnackName: "Khoai tây chiên Poca", Price: 12000, Stock: 120, CategoryID: chips.ID, Images: []string{}},
			{SnackName: "Snack rong biển", Price: 18000, Stock: 4, CategoryID: chips.ID, Discount: 10, Images: []string{}},
			{SnackName: "Kẹo dừa Bến Tre", Price: 35000, Stock: 60, CategoryID: candy.ID, Images: []string{}},
			{SnackName: "Xoài sấy dẻo", Price: 55000, Stock: 8, CategoryID: dried.ID, Images: []string{}},
			{SnackName: "Mít sấy", Price: 45000, Stock: 40, CategoryID: dried.ID, Images: []string{}},
		}
		if err := tx.Create(snacks).Error; err != nil {
			return fmt.Errorf("failed to seed snacks: %w", err)
		}

		orders := []*Order{
			{
				UserID:          &customer.ID,
				Items:           []OrderItem{{SnackID: snacks[0].ID, Name: snacks[0].SnackName, Quantity: 5, Price: 12000}, {SnackID: snacks[2].ID, Name: snacks[2].SnackName, Quantity: 2, Price: 35000}},
				TotalAmount:     160000,
				ShippingFee:     30000,
				ShippingAddress: "12 Lê Lợi, Quận 1, TP.HCM",
				PaymentMethod:   "cod",
				PaymentStatus:   PaymentPaid,
				Status:          OrderCompleted,
			},
			{
				UserID:          &customer.ID,
				Items:           []OrderItem{{SnackID: snacks[3].ID, Name: snacks[3].SnackName, Quantity: 2, Price: 55000}},
				TotalAmount:     140000,
				ShippingFee:     30000,
				ShippingAddress: "12 Lê Lợi, Quận 1, TP.HCM",
				PaymentMethod:   "bank",
				PaymentStatus:   PaymentPending,
				Status:          OrderPending,
			},
		}
		if err := tx.Create(orders).Error; err != nil {
			return fmt.Errorf("failed to seed orders: %w", err)
		}
		if err := tx.Model(snacks[0]).Update("sold_count", 5).Error; err != nil {
			return err
		}
		if err := tx.Model(snacks[2]).Update("sold_count", 2).Error; err != nil {
			return err
		}

		day := 24 * time.Hour
		coupons := []*Coupon{
			{Code: "WELCOME10", DiscountType: DiscountPercentage, DiscountValue: 10, StartDate: now.Add(-day), EndDate: now.Add(30 * day), IsActive: true, Description: "10% off for new customers"},
			{Code: "FREESHIP", DiscountType: DiscountFixed, DiscountValue: 30000, MinPurchase: 200000, StartDate: now.Add(-60 * day), EndDate: now.Add(-day), IsActive: true, Description: "Free shipping"},
		}
		if err := tx.Create(coupons).Error; err != nil {
			return fmt.Errorf("failed to seed coupons: %w", err)
		}

		reviews := []*Review{
			{SnackID: snacks[0].ID, UserID: customer.ID, Rating: 5, Comment: "Giòn ngon", Status: ReviewApproved},
			{SnackID: snacks[2].ID, UserID: customer.ID, Rating: 3, Comment: "Hơi ngọt", Status: ReviewPending},
		}
		if err := tx.Create(reviews).Error; err != nil {
			return fmt.Errorf("failed to seed reviews: %w", err)
		}

		return nil
	})
}
