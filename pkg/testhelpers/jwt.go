package testhelpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateTestJWT creates an HS256-signed token for testing auth flows.
func GenerateTestJWT(t *testing.T, secret, sub string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign test JWT: %v", err)
	}
	return signed
}

// GenerateTestJWTWithBearer returns the token with the "Bearer " prefix for
// the Authorization header.
func GenerateTestJWTWithBearer(t *testing.T, secret, sub string) string {
	return "Bearer " + GenerateTestJWT(t, secret, sub)
}
