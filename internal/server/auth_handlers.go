package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/snackshop-dev/snackadmin/internal/auth"
	"github.com/snackshop-dev/snackadmin/internal/models"
)

const resetTokenTTL = time.Hour

// LoginRequest represents a login request. Source "admin" restricts the login to admins.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Source   string `json:"source"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ChangePasswordRequest changes the signed-in user's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// RoleRequest changes a user's role
type RoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	if err := s.db.Where("LOWER(email) = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.internalError(c, err, "Failed to find user")
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if user.Status == models.UserStatusBlocked {
		fail(c, http.StatusForbidden, "Account is blocked")
		return
	}

	if req.Source == "admin" && !user.IsAdmin() {
		s.logger.Warn().Str("user_id", user.ID).Msg("Non-admin tried to sign in to the admin console")
		fail(c, http.StatusForbidden, "Admin access required")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.internalError(c, err, "Failed to generate token")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: &user})
}

// Tokens are stateless, so logging out only records the event
func (s *Server) logout(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	s.logger.Info().Str("user_id", sessionData.UserID).Msg("User logged out")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var user models.User
	if err := models.FindByID(s.db, sessionData.UserID, &user); err != nil {
		s.lookupError(c, err, "User")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) changePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	sessionData, _ := GetSessionData(c)
	var user models.User
	if err := models.FindByID(s.db, sessionData.UserID, &user); err != nil {
		s.lookupError(c, err, "User")
		return
	}

	// 400 rather than 401: the session is fine, the form is not
	if err := auth.VerifyPassword(req.CurrentPassword, user.PasswordHash); err != nil {
		fail(c, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.internalError(c, err, "Failed to hash password")
		return
	}
	if err := s.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		s.internalError(c, err, "Failed to update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// forgotPassword answers the same way whether or not the email exists
func (s *Server) forgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	err := s.db.Where("LOWER(email) = ?", strings.ToLower(req.Email)).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		s.internalError(c, err, "Failed to find user")
		return
	default:
		token, err := auth.RandomToken(16)
		if err != nil {
			s.internalError(c, err, "Failed to generate reset token")
			return
		}
		expires := s.now().Add(resetTokenTTL)
		if err := s.db.Model(&user).Updates(map[string]any{"reset_token": token, "reset_expires": expires}).Error; err != nil {
			s.internalError(c, err, "Failed to store reset token")
			return
		}
		// There is no mailer in development, the log stands in for the email
		s.logger.Info().Str("email", user.Email).Str("reset_token", token).Time("expires", expires).Msg("Password reset requested")
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a reset link has been sent"})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	if err := s.db.Where("reset_token = ? AND reset_expires > ?", req.Token, s.now()).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusBadRequest, "Reset token is invalid or has expired")
			return
		}
		s.internalError(c, err, "Failed to find reset token")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(c, err, "Failed to hash password")
		return
	}
	if err := s.db.Model(&user).Updates(map[string]any{"password_hash": hash, "reset_token": "", "reset_expires": nil}).Error; err != nil {
		s.internalError(c, err, "Failed to reset password")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Password reset")
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

func (s *Server) setUserRole(c *gin.Context) {
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := c.Param("id")
	sessionData, _ := GetSessionData(c)
	if userID == sessionData.UserID {
		fail(c, http.StatusBadRequest, "You cannot change your own role")
		return
	}

	var user models.User
	if err := models.FindByID(s.db, userID, &user); err != nil {
		s.lookupError(c, err, "User")
		return
	}
	if err := s.db.Model(&user).Update("role", req.Role).Error; err != nil {
		s.internalError(c, err, "Failed to update role")
		return
	}
	user.Role = req.Role

	s.logger.Info().Str("user_id", user.ID).Str("role", req.Role).Str("changed_by", sessionData.UserID).Msg("User role changed")
	c.JSON(http.StatusOK, user)
}
