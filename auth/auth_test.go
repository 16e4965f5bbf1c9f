package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndParseUserToken(t *testing.T) {
	secret := "test-secret"

	token, err := SignUserToken("user-123", secret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}

	userID, err := ParseUserToken(token, secret)
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Expected user-123, got %s", userID)
	}
}

func TestParseUserTokenRejectsWrongSecret(t *testing.T) {
	token, err := SignUserToken("user-123", "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := ParseUserToken(token, "wrong-secret"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestParseUserTokenRejectsExpired(t *testing.T) {
	token, err := SignUserToken("user-123", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := ParseUserToken(token, "secret"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseUserTokenRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "hello-world"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseUserToken(tt.token, "secret"); err == nil {
				t.Error("Expected error, got none")
			}
		})
	}
}

func TestParseUserTokenRejectsMissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := ParseUserToken(signed, "secret"); err != ErrNoSubject {
		t.Errorf("Expected ErrNoSubject, got %v", err)
	}
}

func TestParseUserTokenRejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: "user-123",
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := ParseUserToken(signed, "secret"); err == nil {
		t.Error("Expected error for alg=none token, got none")
	}
}
