package security

import (
	"errors"
	"regexp"
	"testing"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
)

var lowerHex = regexp.MustCompile(`^[0-9a-f]+$`)

func TestHashPasswordKnownVector(t *testing.T) {
	got, err := HashPassword("Secret1!", "0011223344556677")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	const want = "d67d8c15932a24633f5ad16092925486bcf96b0c655406912c280c1ba7cf539b"
	if got != want {
		t.Fatalf("unexpected hash: got %s want %s", got, want)
	}
}

func TestHashPasswordRejectsEmptyInput(t *testing.T) {
	if _, err := HashPassword("", "00ff"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for empty password, got %v", err)
	}
	if _, err := HashPassword("Secret1!", ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for empty salt, got %v", err)
	}
}

func TestNewSaltShape(t *testing.T) {
	a, err := NewSalt()
	if err != nil {
		t.Fatalf("salt failed: %v", err)
	}
	b, err := NewSalt()
	if err != nil {
		t.Fatalf("salt failed: %v", err)
	}
	if len(a) != 16 || !lowerHex.MatchString(a) {
		t.Fatalf("unexpected salt shape: %q", a)
	}
	if a == b {
		t.Fatal("expected distinct salts")
	}
}

func TestVerifyPassword(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("salt failed: %v", err)
	}
	hash, err := HashPassword("Stronger_Pass123", salt)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !VerifyPassword("Stronger_Pass123", salt, hash) {
		t.Fatal("expected password verification success")
	}
	if VerifyPassword("wrong-pass", salt, hash) {
		t.Fatal("expected password verification failure")
	}
	if VerifyPassword("", salt, hash) {
		t.Fatal("expected empty password to fail verification")
	}
}
