package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/snackshop-dev/snackadmin/internal/auth"
	"github.com/snackshop-dev/snackadmin/internal/models"
)

const (
	bearerPrefix    = "Bearer "
	requestIDHeader = "X-Request-ID"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserBlocked       = errors.New("user blocked")

	errNotAdmin = errors.New("admin role required")
)

// authMessages is what the console shows for each rejected request
var authMessages = map[error]string{
	ErrMissingAuthHeader: "Missing authorization header",
	ErrInvalidAuthFormat: "Invalid authorization header format",
	ErrEmptyToken:        "Empty token",
	ErrInvalidToken:      "Invalid or expired token",
	ErrUserNotFound:      "User not found",
	ErrUserBlocked:       "Account is blocked",
}

// sessionKey holds the *auth.SessionData of the request
const sessionKey = "session"

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set(sessionKey, sessionData)
}

// GetSessionData returns the session set by JWTAuthMiddleware
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sessionData, ok := v.(*auth.SessionData)
	return sessionData, ok
}

func bearerToken(header string) (string, error) {
	switch {
	case header == "":
		return "", ErrMissingAuthHeader
	case !strings.HasPrefix(header, bearerPrefix):
		return "", ErrInvalidAuthFormat
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// rejectSession answers 401 with the message for err
func rejectSession(c *gin.Context, log zerolog.Logger, err error) {
	respondWithError(c, log, http.StatusUnauthorized, err, authMessages[err])
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Str("path", c.Request.URL.Path).Str("request_id", c.GetHeader(requestIDHeader)).Msg(message)
	c.AbortWithStatusJSON(statusCode, gin.H{"message": message})
}

// JWTAuthMiddleware validates bearer tokens and loads the session
func JWTAuthMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			rejectSession(c, log, err)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			rejectSession(c, log, ErrInvalidToken)
			return
		}

		// The account may have been removed or blocked since the token was issued
		var user models.User
		if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			rejectSession(c, log, ErrUserNotFound)
			return
		}
		if user.Status == models.UserStatusBlocked {
			rejectSession(c, log, ErrUserBlocked)
			return
		}

		setSession(c, &auth.SessionData{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
			Token:  token,
		})

		c.Next()
	}
}

// AdminOnlyMiddleware ensures the authenticated user is an admin
func AdminOnlyMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, ok := GetSessionData(c)
		if !ok {
			rejectSession(c, log, ErrMissingAuthHeader)
			return
		}
		if !sessionData.IsAdmin() {
			respondWithError(c, log, http.StatusForbidden, errNotAdmin, "Admin access required")
			return
		}

		c.Next()
	}
}
