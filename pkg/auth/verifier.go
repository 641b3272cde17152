package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier validates JWT token strings.
// This abstraction enables testing with mock implementations.
type TokenVerifier interface {
	// ValidateToken validates a token string and returns the claims.
	ValidateToken(tokenString string) (*Claims, error)
	// Close releases any resources held by the verifier.
	Close()
}

// VerifierConfig contains configuration for the token verifier.
type VerifierConfig struct {
	// EnableVerification controls whether signatures are verified.
	// Set to false for development mode (parses tokens without verification).
	EnableVerification bool
	// Secret enables HS256 verification when non-empty.
	Secret string
	// JWKSURL enables RS256 verification via a JWKS endpoint when non-empty.
	// Takes precedence over Secret.
	JWKSURL string
	// Issuer restricts accepted tokens to this issuer when non-empty.
	Issuer string
}

// Verifier validates JWTs with either a shared HMAC secret or JWKS public
// keys, depending on configuration.
type Verifier struct {
	config *VerifierConfig
	jwks   keyfunc.Keyfunc // nil unless JWKSURL is configured
}

// NewVerifier creates a token verifier. When verification is enabled, either
// Secret or JWKSURL must be set.
func NewVerifier(config *VerifierConfig) (*Verifier, error) {
	v := &Verifier{config: config}

	if !config.EnableVerification {
		return v, nil
	}

	if config.JWKSURL != "" {
		jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{config.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create JWKS client for %s: %w", config.JWKSURL, err)
		}
		v.jwks = jwks
		return v, nil
	}

	if config.Secret == "" {
		return nil, errors.New("token verification enabled but no JWT secret or JWKS URL configured")
	}

	return v, nil
}

// ValidateToken validates a JWT and returns the claims.
// If verification is disabled, it parses the token without signature checks.
func (v *Verifier) ValidateToken(tokenString string) (*Claims, error) {
	if !v.config.EnableVerification {
		return v.parseUnverifiedToken(tokenString)
	}

	var opts []jwt.ParserOption
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.keyFor, opts...)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}

	return claims, nil
}

// keyFor returns the verification key for a token, enforcing the expected
// signing method for the configured mode.
func (v *Verifier) keyFor(token *jwt.Token) (interface{}, error) {
	if v.jwks != nil {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		keyfuncFn := v.jwks.KeyfuncCtx(context.Background())
		return keyfuncFn(token)
	}

	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(v.config.Secret), nil
}

// parseUnverifiedToken parses a JWT without verifying the signature.
// Used in development mode when EnableVerification is false.
func (v *Verifier) parseUnverifiedToken(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}

	return claims, nil
}

// Close releases any resources held by the verifier.
func (v *Verifier) Close() {
	// No cleanup required with keyfunc v3
}

// Ensure Verifier implements TokenVerifier at compile time.
var _ TokenVerifier = (*Verifier)(nil)
