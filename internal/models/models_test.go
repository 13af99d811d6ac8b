package models

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func plainHash(s string) (string, error) { return "hash:" + s, nil }

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderProcessing, OrderShipping, true},
		{OrderShipping, OrderCompleted, true},
		{OrderShipping, OrderCancelled, true},
		{OrderPending, OrderCompleted, false},
		{OrderCompleted, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderPending, "refunded", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestCoupon_Usable(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	c := Coupon{IsActive: true, StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 1)}
	assert.Empty(t, c.Usable(now))

	assert.Equal(t, "Coupon has expired", c.Usable(now.AddDate(0, 0, 2)))
	assert.Equal(t, "Coupon is not valid yet", c.Usable(now.AddDate(0, 0, -2)))

	c.IsActive = false
	assert.Equal(t, "Coupon is not active", c.Usable(now))
}

func TestUser_NameComputedOnLoad(t *testing.T) {
	db := openTestDB(t)

	u := &User{FirstName: "An", LastName: "Nguyen", Email: "an@snack.vn", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	assert.Len(t, u.ID, 26)
	assert.Equal(t, "Nguyen An", u.Name)

	var loaded User
	require.NoError(t, FindByID(db, u.ID, &loaded))
	assert.Equal(t, "Nguyen An", loaded.Name)
	assert.Equal(t, RoleUser, loaded.Role)
	assert.Equal(t, UserStatusActive, loaded.Status)
}

func TestOrder_ItemsRoundTripAndUserPreload(t *testing.T) {
	db := openTestDB(t)

	u := &User{FirstName: "An", LastName: "Nguyen", Email: "an@snack.vn", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)

	o := &Order{UserID: &u.ID, Items: []OrderItem{{SnackID: "s1", Name: "Poca", Quantity: 2, Price: 12000}}, TotalAmount: 24000}
	require.NoError(t, db.Create(o).Error)

	var loaded Order
	require.NoError(t, db.Preload("User").First(&loaded, "id = ?", o.ID).Error)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	require.NotNil(t, loaded.User)
	assert.Equal(t, "Nguyen An", loaded.User.Name)
	assert.Equal(t, OrderPending, loaded.Status)
}

func TestSeed_OnlyOnce(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	require.NoError(t, Seed(db, plainHash, now))
	require.NoError(t, Seed(db, plainHash, now))

	var users, snacks, coupons int64
	db.Model(&User{}).Count(&users)
	db.Model(&Snack{}).Count(&snacks)
	db.Model(&Coupon{}).Count(&coupons)
	assert.EqualValues(t, 2, users)
	assert.EqualValues(t, 5, snacks)
	assert.EqualValues(t, 2, coupons)

	var admin User
	require.NoError(t, db.Where("email = ?", SeedAdminEmail).First(&admin).Error)
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, "hash:"+SeedAdminPassword, admin.PasswordHash)
}
