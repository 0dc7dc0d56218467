package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong reports a password the bcrypt scheme cannot hash.
// bcrypt reads at most 72 bytes.
var ErrPasswordTooLong = errors.New("password too long")

// Scheme names how new password hashes are produced.
type Scheme string

const (
	// SchemeSHA256 is unsalted SHA-256 hex, kept so existing user records
	// still verify.
	SchemeSHA256 Scheme = "sha256"
	SchemeBcrypt Scheme = "bcrypt"
)

// ParseScheme maps a config value onto a Scheme. Empty means sha256.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeSHA256:
		return SchemeSHA256, nil
	case SchemeBcrypt:
		return SchemeBcrypt, nil
	default:
		return "", fmt.Errorf("unknown password scheme %q", s)
	}
}

// HashPassword hashes password with the given scheme.
func HashPassword(scheme Scheme, password string) (string, error) {
	switch scheme {
	case SchemeBcrypt:
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(h), nil
	case SchemeSHA256, "":
		sum := sha256.Sum256([]byte(password))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// CheckPassword verifies password against a stored hash of either scheme.
func CheckPassword(password, stored string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	sum := sha256.Sum256([]byte(password))
	want := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(want)) == 1
}
