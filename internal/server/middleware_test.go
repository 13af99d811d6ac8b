package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snackshop-dev/snackadmin/internal/auth"
	"github.com/snackshop-dev/snackadmin/internal/models"
)

func TestJWTAuthMiddleware_StoresSession(t *testing.T) {
	api := newTestAPI(t)
	var admin models.User
	require.NoError(t, api.db.Where("email = ?", models.SeedAdminEmail).First(&admin).Error)
	token, err := auth.GenerateToken(admin.ID, admin.Email, admin.Role)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	var seen *auth.SessionData
	router.GET("/whoami", JWTAuthMiddleware(api.db, zerolog.Nop()), AdminOnlyMiddleware(zerolog.Nop()), func(c *gin.Context) {
		sessionData, ok := GetSessionData(c)
		require.True(t, ok)
		seen = sessionData
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	require.NotNil(t, seen)
	assert.Equal(t, admin.ID, seen.UserID)
	assert.Equal(t, models.SeedAdminEmail, seen.Email)
	assert.True(t, seen.IsAdmin())
	assert.Equal(t, token, seen.Token)
}

func TestGetSessionData_MissingOutsideAuthenticatedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetSessionData(c)
	assert.False(t, ok)
}
