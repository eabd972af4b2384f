package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestValidator_UserIDClaim(t *testing.T) {
	validate := NewValidator(testSecret)
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"user_id": "u-1",
		"name":    "Ann",
		"role":    RoleAdmin,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	claims, err := validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "Ann", claims.Name)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestValidator_SubFallbackAndDefaultRole(t *testing.T) {
	validate := NewValidator(testSecret)
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "u-2"})

	claims, err := validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-2", claims.UserID)
	assert.Equal(t, RoleCustomer, claims.Role)
}

func TestValidator_Rejects(t *testing.T) {
	validate := NewValidator(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "u"})},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"sub": "u", "exp": time.Now().Add(-time.Minute).Unix(),
		})},
		{"other hmac alg", sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "u"})},
		{"no subject", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"name": "x"})},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := validate(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
