package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret" {
		t.Error("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Error("expected password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

func TestNewToken_ParseToken(t *testing.T) {
	uid := uuid.New()
	tok, err := NewToken(uid, RoleDoctor, "secret", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseToken(tok, "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != uid.String() {
		t.Errorf("expected subject %s, got %s", uid, claims.Subject)
	}
	if claims.Role != RoleDoctor {
		t.Errorf("expected role doctor, got %s", claims.Role)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := NewToken(uuid.New(), RolePatient, "secret", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseToken(tok, "other"); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := NewToken(uuid.New(), RolePatient, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseToken(tok, "secret"); err == nil {
		t.Error("expected error for expired token")
	}
}
