package repository

import (
	"context"
	"time"

	"github.com/tabletophq/groupfinder/internal/domain"
)

type ResetTokenRepository interface {
	Create(ctx context.Context, userID int64, tokenHash string, createdAt time.Time) error
	FindByHash(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)
	// DeleteOlderThan purges tokens created before the cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	// Exists reports whether a live (non-expired) session backs the hash.
	Exists(ctx context.Context, tokenHash string) (bool, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
