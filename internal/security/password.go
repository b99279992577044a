package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/samber/oops"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
)

const saltLen = 8

// NewSalt returns 8 random bytes as lowercase hex.
func NewSalt() (string, error) {
	b := make([]byte, saltLen)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("SALT_FAILED").Wrap(err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword returns the lowercase hex SHA-256 digest of password followed by salt.
func HashPassword(password, salt string) (string, error) {
	if password == "" {
		return "", oops.Code(apperr.CodeInvalidArgument).With("field", "password").Wrap(apperr.ErrInvalidArgument)
	}
	if salt == "" {
		return "", oops.Code(apperr.CodeInvalidArgument).With("field", "salt").Wrap(apperr.ErrInvalidArgument)
	}
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:]), nil
}

// VerifyPassword recomputes the hash and compares it in constant time.
func VerifyPassword(password, salt, expected string) bool {
	actual, err := HashPassword(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}
