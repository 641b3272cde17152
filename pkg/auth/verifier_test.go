package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signHS256(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validClaims() *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "gaitguard",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		PatientID: "patient-1",
		Role:      "patient",
	}
}

func TestVerifier_HMAC_Valid(t *testing.T) {
	v, err := NewVerifier(&VerifierConfig{
		EnableVerification: true,
		Secret:             "test-secret",
	})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	claims, err := v.ValidateToken(signHS256(t, "test-secret", validClaims()))
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %q", claims.Subject)
	}
	if claims.PatientID != "patient-1" {
		t.Errorf("expected patient claim, got %q", claims.PatientID)
	}
	if claims.Role != "patient" {
		t.Errorf("expected role claim, got %q", claims.Role)
	}
}

func TestVerifier_HMAC_WrongSecret(t *testing.T) {
	v, err := NewVerifier(&VerifierConfig{
		EnableVerification: true,
		Secret:             "test-secret",
	})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	if _, err := v.ValidateToken(signHS256(t, "other-secret", validClaims())); err == nil {
		t.Fatal("expected error for token signed with wrong secret")
	}
}

func TestVerifier_HMAC_Expired(t *testing.T) {
	v, err := NewVerifier(&VerifierConfig{
		EnableVerification: true,
		Secret:             "test-secret",
	})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	if _, err := v.ValidateToken(signHS256(t, "test-secret", claims)); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerifier_IssuerCheck(t *testing.T) {
	v, err := NewVerifier(&VerifierConfig{
		EnableVerification: true,
		Secret:             "test-secret",
		Issuer:             "gaitguard",
	})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	if _, err := v.ValidateToken(signHS256(t, "test-secret", validClaims())); err != nil {
		t.Errorf("expected matching issuer to validate, got %v", err)
	}

	claims := validClaims()
	claims.Issuer = "someone-else"
	if _, err := v.ValidateToken(signHS256(t, "test-secret", claims)); err == nil {
		t.Fatal("expected error for wrong issuer")
	}
}

func TestVerifier_RejectsNonHMACMethod(t *testing.T) {
	v, err := NewVerifier(&VerifierConfig{
		EnableVerification: true,
		Secret:             "test-secret",
	})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	// alg: none token must never pass HMAC verification
	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build none-alg token: %v", err)
	}

	if _, err := v.ValidateToken(unsigned); err == nil {
		t.Fatal("expected error for none-alg token")
	}
}

func TestVerifier_DisabledSkipsSignature(t *testing.T) {
	v, err := NewVerifier(&VerifierConfig{EnableVerification: false})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	// Signed with a secret the verifier never saw; accepted because
	// verification is off.
	claims, err := v.ValidateToken(signHS256(t, "whatever", validClaims()))
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected parsed claims, got subject %q", claims.Subject)
	}
}

func TestVerifier_MissingKeyMaterial(t *testing.T) {
	_, err := NewVerifier(&VerifierConfig{EnableVerification: true})
	if err == nil || !strings.Contains(err.Error(), "no JWT secret") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestVerifier_GarbageToken(t *testing.T) {
	v, err := NewVerifier(&VerifierConfig{
		EnableVerification: true,
		Secret:             "test-secret",
	})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	if _, err := v.ValidateToken("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
