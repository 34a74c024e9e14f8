package repository

import (
	"context"

	"github.com/tabletophq/groupfinder/internal/domain"
)

type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	Avatar       *string
}

type UpdateUserInput struct {
	Email        string
	PasswordHash string
	Avatar       *string
}

// UseCases depend on interfaces, not the pgx implementations, so tests
// can pass fakes and the store can be swapped without touching them.
type UserRepository interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error)
	// SetPassword updates the hash and deletes the consumed reset token
	// in one transaction.
	SetPassword(ctx context.Context, id int64, passwordHash, resetTokenHash string) error
}
