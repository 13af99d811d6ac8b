package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/snackshop-dev/snackadmin/internal/models"
)

// CouponRequest is the body for creating or updating a coupon
type CouponRequest struct {
	Code          string    `json:"code" binding:"required,max=50"`
	DiscountType  string    `json:"discountType" binding:"required,oneof=percentage fixed"`
	DiscountValue float64   `json:"discountValue" binding:"gt=0"`
	MinPurchase   float64   `json:"minPurchase" binding:"gte=0"`
	StartDate     time.Time `json:"startDate" binding:"required"`
	EndDate       time.Time `json:"endDate" binding:"required"`
	IsActive      bool      `json:"isActive"`
	Description   string    `json:"description"`
}

// check returns the reason the request is inconsistent, or ""
func (r *CouponRequest) check() string {
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	switch {
	case r.Code == "":
		return "code is required"
	case r.DiscountType == models.DiscountPercentage && r.DiscountValue > 100:
		return "A percentage discount cannot exceed 100"
	case !r.EndDate.After(r.StartDate):
		return "endDate must be after startDate"
	default:
		return ""
	}
}

func (r *CouponRequest) apply(coupon *models.Coupon) {
	coupon.Code = r.Code
	coupon.DiscountType = r.DiscountType
	coupon.DiscountValue = r.DiscountValue
	coupon.MinPurchase = r.MinPurchase
	coupon.StartDate = r.StartDate
	coupon.EndDate = r.EndDate
	coupon.IsActive = r.IsActive
	coupon.Description = r.Description
}

// ValidateCouponRequest checks a code
type ValidateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

func (s *Server) listCoupons(c *gin.Context) {
	var coupons []models.Coupon
	if err := s.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		s.internalError(c, err, "Failed to list coupons")
		return
	}
	c.JSON(http.StatusOK, coupons)
}

func (s *Server) getCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := models.FindByID(s.db, c.Param("id"), &coupon); err != nil {
		s.lookupError(c, err, "Coupon")
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (s *Server) createCoupon(c *gin.Context) {
	var req CouponRequest
	if !bindJSON(c, &req) {
		return
	}
	if msg := req.check(); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if !s.couponCodeFree(c, req.Code, "") {
		return
	}

	var coupon models.Coupon
	req.apply(&coupon)
	if err := s.db.Create(&coupon).Error; err != nil {
		s.internalError(c, err, "Failed to create coupon")
		return
	}
	// An explicit false must survive the column default
	if !req.IsActive {
		if err := s.db.Model(&coupon).Update("is_active", false).Error; err != nil {
			s.internalError(c, err, "Failed to create coupon")
			return
		}
		coupon.IsActive = false
	}

	s.logger.Info().Str("coupon_id", coupon.ID).Str("code", coupon.Code).Msg("Coupon created")
	c.JSON(http.StatusCreated, coupon)
}

func (s *Server) updateCoupon(c *gin.Context) {
	var req CouponRequest
	if !bindJSON(c, &req) {
		return
	}
	if msg := req.check(); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}

	var coupon models.Coupon
	if err := models.FindByID(s.db, c.Param("id"), &coupon); err != nil {
		s.lookupError(c, err, "Coupon")
		return
	}
	if !s.couponCodeFree(c, req.Code, coupon.ID) {
		return
	}

	req.apply(&coupon)
	if err := s.db.Save(&coupon).Error; err != nil {
		s.internalError(c, err, "Failed to update coupon")
		return
	}

	c.JSON(http.StatusOK, coupon)
}

func (s *Server) deleteCoupon(c *gin.Context) {
	result := s.db.Where("id = ?", c.Param("id")).Delete(&models.Coupon{})
	if result.Error != nil {
		s.internalError(c, result.Error, "Failed to delete coupon")
		return
	}
	if result.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Coupon not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
}

// validateCoupon always answers 200; an unusable code is a normal outcome, not an error
func (s *Server) validateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if !bindJSON(c, &req) {
		return
	}

	var coupon models.Coupon
	err := s.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(req.Code))).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"valid": false, "message": "Coupon not found"})
		return
	}
	if err != nil {
		s.internalError(c, err, "Failed to load coupon")
		return
	}

	if reason := coupon.Usable(s.now()); reason != "" {
		c.JSON(http.StatusOK, gin.H{"valid": false, "message": reason, "coupon": coupon})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "coupon": coupon})
}

// couponCodeFree answers 409 when another coupon already uses code
func (s *Server) couponCodeFree(c *gin.Context, code, exceptID string) bool {
	var existing models.Coupon
	err := s.db.Where("code = ?", code).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return true
	case err != nil:
		s.internalError(c, err, "Failed to check coupon code")
		return false
	case existing.ID == exceptID:
		return true
	default:
		fail(c, http.StatusConflict, "A coupon with this code already exists")
		return false
	}
}
