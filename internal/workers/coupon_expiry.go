package workers

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/snackshop-dev/snackadmin/internal/models"
)

// StartCouponExpiry runs ExpireCoupons on schedule (a cron spec or "@every 1h"). It returns
// the running scheduler so the caller can stop it, or nil when schedule is "off".
func StartCouponExpiry(db *gorm.DB, schedule string, logger zerolog.Logger) (*cron.Cron, error) {
	if schedule == "" || schedule == "off" {
		logger.Info().Msg("Coupon expiry job disabled")
		return nil, nil
	}

	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)))
	if _, err := c.AddFunc(schedule, func() {
		if _, err := ExpireCoupons(db, time.Now(), logger); err != nil {
			logger.Error().Err(err).Msg("Coupon expiry run failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid coupon expiry schedule %q: %w", schedule, err)
	}

	// Run immediately on startup, then on schedule
	if _, err := ExpireCoupons(db, time.Now(), logger); err != nil {
		logger.Error().Err(err).Msg("Coupon expiry run failed")
	}

	c.Start()
	logger.Info().Str("schedule", schedule).Msg("Coupon expiry job scheduled")
	return c, nil
}

// ExpireCoupons deactivates active coupons whose end date is before now
func ExpireCoupons(db *gorm.DB, now time.Time, logger zerolog.Logger) (int64, error) {
	result := db.Model(&models.Coupon{}).
		Where("is_active = ? AND end_date < ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate expired coupons: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		logger.Info().Int64("count", result.RowsAffected).Msg("Deactivated expired coupons")
	} else {
		logger.Debug().Msg("No expired coupons")
	}
	return result.RowsAffected, nil
}
