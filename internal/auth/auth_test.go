package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitializeJWT("test-secret", time.Hour)

	token, err := GenerateToken("01HZ", "admin@snack.vn", RoleAdmin)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "01HZ", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateToken_Rejects(t *testing.T) {
	InitializeJWT("test-secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID: "01HZ",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{UserID: "01HZ"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID:           "01HZ",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expiredToken},
		{"no expiry", noExpiry},
		{"wrong key", otherKey},
		{"garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.NoError(t, VerifyPassword("secret", hash))
	assert.Error(t, VerifyPassword("wrong", hash))
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(16)
	require.NoError(t, err)
	b, err := RandomToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
