package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snackshop-dev/snackadmin/internal/models"
)

// ReviewStatusRequest moderates a review
type ReviewStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

func (s *Server) listReviews(c *gin.Context) {
	query := s.db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		s.internalError(c, err, "Failed to list reviews")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (s *Server) listReviewsByProduct(c *gin.Context) {
	s.listReviewsWhere(c, "snack_id = ?", c.Param("id"))
}

func (s *Server) listReviewsByUser(c *gin.Context) {
	s.listReviewsWhere(c, "user_id = ?", c.Param("id"))
}

func (s *Server) listReviewsWhere(c *gin.Context, cond string, arg string) {
	var reviews []models.Review
	if err := s.db.Where(cond, arg).Order("created_at DESC").Find(&reviews).Error; err != nil {
		s.internalError(c, err, "Failed to list reviews")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (s *Server) setReviewStatus(c *gin.Context) {
	var req ReviewStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	var review models.Review
	if err := models.FindByID(s.db, c.Param("id"), &review); err != nil {
		s.lookupError(c, err, "Review")
		return
	}
	if err := s.db.Model(&review).Update("status", req.Status).Error; err != nil {
		s.internalError(c, err, "Failed to update review")
		return
	}
	review.Status = req.Status

	c.JSON(http.StatusOK, review)
}

func (s *Server) deleteReview(c *gin.Context) {
	result := s.db.Where("id = ?", c.Param("id")).Delete(&models.Review{})
	if result.Error != nil {
		s.internalError(c, result.Error, "Failed to delete review")
		return
	}
	if result.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Review not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
