package utils

import (
	"testing"
)

func TestSignAndParseJWT(t *testing.T) {
	token, err := SignJWT("secret", "user-123", "employer", 60)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	claims, err := ParseJWT("secret", token)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if claims.UserID != "user-123" || claims.Role != "employer" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := SignJWT("secret", "user-123", "employer", 60)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ParseJWT("other-secret", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	token, err := SignJWT("secret", "user-123", "employer", -1)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ParseJWT("secret", token); err == nil {
		t.Fatal("expected error for expired token")
	}
}
