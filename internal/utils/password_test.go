package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	if hashed == "secret123" {
		t.Fatal("hash must not equal the plain password")
	}

	if !CheckPassword(hashed, "secret123") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hashed, "wrong") {
		t.Fatal("wrong password accepted")
	}
}
