package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/policy"
	"github.com/tabletophq/groupfinder/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type UserUsecase struct {
	users repository.UserRepository
}

func NewUserUsecase(users repository.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Avatar   *string
}

// Register pre-checks username and email for the distinct conflict
// messages; the unique indexes catch whatever slips through a race.
func (u *UserUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if _, err := u.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if _, err := u.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := u.users.Create(ctx, repository.CreateUserInput{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Avatar:       input.Avatar,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (u *UserUsecase) GetUser(ctx context.Context, id, actorID int64) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := policy.Authorize(policy.ResourceUser, policy.ActionView, actorID, policy.Ref{OwnerID: user.ID}); err != nil {
		return nil, err
	}
	return user, nil
}

type UpdateUserInput struct {
	Email    string
	Password string
	Avatar   *string
}

func (u *UserUsecase) UpdateUser(ctx context.Context, id, actorID int64, input UpdateUserInput) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := policy.Authorize(policy.ResourceUser, policy.ActionUpdate, actorID, policy.Ref{OwnerID: user.ID}); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	updated, err := u.users.Update(ctx, id, repository.UpdateUserInput{
		Email:        input.Email,
		PasswordHash: string(hash),
		Avatar:       input.Avatar,
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}
