// Package session issues the bearer tokens returned by register and login.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"edutechai/internal/util"
)

// Issuer creates tokens for users and checks tokens presented later.
type Issuer interface {
	Issue(ctx context.Context, userID string) (string, error)
	// Verify reports whether token is acceptable. userID is empty when the
	// issuer keeps no record of who a token belongs to.
	Verify(ctx context.Context, token string) (userID string, ok bool, err error)
}

// Modes accepted by config.
const (
	ModeOpaque = "opaque"
	ModeRedis  = "redis"
	ModeJWT    = "jwt"
)

// DefaultTTL bounds the lifetime of redis and jwt sessions.
const DefaultTTL = 7 * 24 * time.Hour

// Opaque issues random tokens and keeps nothing. Any non-empty token is
// accepted, which matches clients that only check a token is present.
type Opaque struct{}

func (Opaque) Issue(context.Context, string) (string, error) {
	return util.NewToken(32), nil
}

func (Opaque) Verify(_ context.Context, token string) (string, bool, error) {
	return "", strings.TrimSpace(token) != "", nil
}

// ValidateMode rejects unknown session modes.
func ValidateMode(mode string) error {
	switch mode {
	case "", ModeOpaque, ModeRedis, ModeJWT:
		return nil
	default:
		return fmt.Errorf("unknown session mode %q", mode)
	}
}
