package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/snackshop-dev/snackadmin/internal/auth"
	"github.com/snackshop-dev/snackadmin/internal/models"
)

// UserRequest is the admin form for creating or updating an account
type UserRequest struct {
	FirstName string `json:"firstName" binding:"required,max=50"`
	LastName  string `json:"lastName" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
	Role      string `json:"role" binding:"omitempty,oneof=admin user"`
	Password  string `json:"password" binding:"omitempty,min=6"`
}

// UserStatusRequest blocks or unblocks an account
type UserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active blocked"`
}

func (s *Server) listUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		s.internalError(c, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) getUser(c *gin.Context) {
	var user models.User
	if err := models.FindByID(s.db, c.Param("id"), &user); err != nil {
		s.lookupError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, user)
}

// createUser creates an account. Without a password a random one is generated and logged.
func (s *Server) createUser(c *gin.Context) {
	var req UserRequest
	if !bindJSON(c, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !s.emailFree(c, email, "") {
		return
	}

	password := req.Password
	if password == "" {
		generated, err := auth.RandomToken(6)
		if err != nil {
			s.internalError(c, err, "Failed to generate password")
			return
		}
		password = generated
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.internalError(c, err, "Failed to hash password")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		Phone:        req.Phone,
		Role:         role,
		Status:       models.UserStatusActive,
		PasswordHash: hash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		s.internalError(c, err, "Failed to create user")
		return
	}

	sessionData, _ := GetSessionData(c)
	event := s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Str("created_by", sessionData.UserID)
	if req.Password == "" {
		event = event.Str("initial_password", password)
	}
	event.Msg("User created")

	c.JSON(http.StatusCreated, user)
}

func (s *Server) updateUser(c *gin.Context) {
	var req UserRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	if err := models.FindByID(s.db, c.Param("id"), &user); err != nil {
		s.lookupError(c, err, "User")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !s.emailFree(c, email, user.ID) {
		return
	}

	sessionData, _ := GetSessionData(c)
	if req.Role != "" && req.Role != user.Role && user.ID == sessionData.UserID {
		fail(c, http.StatusBadRequest, "You cannot change your own role")
		return
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = email
	user.Phone = req.Phone
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			s.internalError(c, err, "Failed to hash password")
			return
		}
		user.PasswordHash = hash
	}

	if err := s.db.Save(&user).Error; err != nil {
		s.internalError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	userID := c.Param("id")
	sessionData, _ := GetSessionData(c)

	// Prevent deleting self
	if userID == sessionData.UserID {
		fail(c, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	// Orders stay for the books as guest orders; reviews go with the account
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&models.Order{}).Where("user_id = ?", userID).Update("user_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.Review{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.internalError(c, err, "Failed to delete user")
		return
	}

	s.logger.Info().Str("user_id", userID).Str("deleted_by", sessionData.UserID).Msg("User deleted")
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (s *Server) setUserStatus(c *gin.Context) {
	var req UserStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := c.Param("id")
	sessionData, _ := GetSessionData(c)
	if userID == sessionData.UserID && req.Status == models.UserStatusBlocked {
		fail(c, http.StatusBadRequest, "You cannot block your own account")
		return
	}

	var user models.User
	if err := models.FindByID(s.db, userID, &user); err != nil {
		s.lookupError(c, err, "User")
		return
	}
	if err := s.db.Model(&user).Update("status", req.Status).Error; err != nil {
		s.internalError(c, err, "Failed to update user status")
		return
	}
	user.Status = req.Status

	s.logger.Info().Str("user_id", user.ID).Str("status", req.Status).Str("changed_by", sessionData.UserID).Msg("User status changed")
	c.JSON(http.StatusOK, user)
}

// adminResetPassword replaces the password with a generated one. The log stands in for the email.
func (s *Server) adminResetPassword(c *gin.Context) {
	var user models.User
	if err := models.FindByID(s.db, c.Param("id"), &user); err != nil {
		s.lookupError(c, err, "User")
		return
	}

	password, err := auth.RandomToken(6)
	if err != nil {
		s.internalError(c, err, "Failed to generate password")
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.internalError(c, err, "Failed to hash password")
		return
	}
	if err := s.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		s.internalError(c, err, "Failed to reset password")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Str("temporary_password", password).Msg("Password reset by admin")
	c.JSON(http.StatusOK, gin.H{"message": "A new password has been sent to " + user.Email})
}

func (s *Server) searchUsers(c *gin.Context) {
	q := likePattern(c.Query("query"))

	var users []models.User
	if err := s.db.Where(
		`LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\'`,
		q, q, q, q,
	).Order("created_at DESC").Find(&users).Error; err != nil {
		s.internalError(c, err, "Failed to search users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// emailFree answers 409 when another account already uses email
func (s *Server) emailFree(c *gin.Context, email, exceptID string) bool {
	var existing models.User
	err := s.db.Where("LOWER(email) = ?", email).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return true
	case err != nil:
		s.internalError(c, err, "Failed to check email")
		return false
	case existing.ID == exceptID:
		return true
	default:
		fail(c, http.StatusConflict, "An account with this email already exists")
		return false
	}
}
