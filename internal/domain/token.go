package domain

import (
	"errors"
	"time"
)

var (
	ErrTokenNotFound   = errors.New("reset token not found")
	ErrTokenExpired    = errors.New("reset token expired")
	ErrSessionNotFound = errors.New("session not found")
)

// ResetTokenTTL is how long a password-reset token stays valid.
// A token aged exactly ResetTokenTTL is still accepted.
const ResetTokenTTL = 2 * time.Hour

// PasswordResetToken is single-use: consuming it deletes the row.
// Only the sha256 hash of the emailed token is stored.
type PasswordResetToken struct {
	TokenHash string
	UserID    int64
	CreatedAt time.Time
}

// Session backs a bearer JWT. The JWT carries the session's jti; the
// row must still exist for the token to be accepted, which is what
// makes logout an actual revocation.
type Session struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
