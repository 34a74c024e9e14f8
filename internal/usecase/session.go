package usecase

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const defaultSessionTTL = 24 * time.Hour

type SessionUsecase struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	jwtKey     []byte
	sessionTTL time.Duration
}

func NewSessionUsecase(users repository.UserRepository, sessions repository.SessionRepository, jwtKey []byte) *SessionUsecase {
	return &SessionUsecase{
		users:      users,
		sessions:   sessions,
		jwtKey:     jwtKey,
		sessionTTL: defaultSessionTTL,
	}
}

// HashSessionID is the storage form of a JWT's jti. The middleware
// applies the same hash before the revocation lookup.
func HashSessionID(jti string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(jti)))
}

// Login verifies the credentials and mints an HS256 JWT whose jti is
// backed by a session row — deleting the row revokes the token.
func (u *SessionUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(u.sessionTTL)
	jti := uuid.NewString()

	if err := u.sessions.Create(ctx, user.ID, HashSessionID(jti), expiresAt); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(user.ID, 10),
		"jti": jti,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return nil, "", fmt.Errorf("sign jwt: %w", err)
	}
	return user, signed, nil
}

// Logout deletes the session row behind the presented token's jti.
func (u *SessionUsecase) Logout(ctx context.Context, jti string) error {
	if err := u.sessions.DeleteByHash(ctx, HashSessionID(jti)); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
