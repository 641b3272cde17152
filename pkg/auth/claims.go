// Package auth provides JWT-based authentication for gaitguard-engine.
// Tokens may be HMAC-signed (shared secret) or RSA-signed and verified via a
// JWKS endpoint.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims gaitguard-engine accepts. The subject is
// the caller's user ID; pat scopes the token to a single patient record.
type Claims struct {
	jwt.RegisteredClaims
	PatientID string `json:"pat,omitempty"`  // Patient the token is scoped to
	Role      string `json:"role,omitempty"` // patient | provider | agent
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// GetUserIDFromContext extracts the subject from JWT claims in the context.
// Returns empty string if not authenticated.
func GetUserIDFromContext(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	return claims.Subject
}
