package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/repository"
	"github.com/tabletophq/groupfinder/internal/usecase"
)

type fakeUserRepo struct {
	create         func(ctx context.Context, input repository.CreateUserInput) (*domain.User, error)
	findByID       func(ctx context.Context, id int64) (*domain.User, error)
	findByUsername func(ctx context.Context, username string) (*domain.User, error)
	findByEmail    func(ctx context.Context, email string) (*domain.User, error)
	update         func(ctx context.Context, id int64, input repository.UpdateUserInput) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, input repository.CreateUserInput) (*domain.User, error) {
	return r.create(ctx, input)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findByUsername(ctx, username)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) Update(ctx context.Context, id int64, input repository.UpdateUserInput) (*domain.User, error) {
	return r.update(ctx, id, input)
}

func (r *fakeUserRepo) SetPassword(context.Context, int64, string, string) error {
	panic("not used")
}

type fakeSessionRepo struct {
	create       func(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	deleteByHash func(ctx context.Context, tokenHash string) error
}

func (r *fakeSessionRepo) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	return r.create(ctx, userID, tokenHash, expiresAt)
}

func (r *fakeSessionRepo) Exists(context.Context, string) (bool, error) {
	panic("not used")
}

func (r *fakeSessionRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	return r.deleteByHash(ctx, tokenHash)
}

func (r *fakeSessionRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	panic("not used")
}

var testJWTKey = []byte("0123456789abcdef0123456789abcdef")

func loginUser(t *testing.T) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("swordfish"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return &domain.User{ID: 7, Username: "geralt", Email: "geralt@kaermorhen.example", PasswordHash: string(hash)}
}

func TestLogin_MintsRevocableToken(t *testing.T) {
	user := loginUser(t)
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}
	var storedHash string
	var storedExpiry time.Time
	sessions := &fakeSessionRepo{
		create: func(_ context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
			if userID != user.ID {
				t.Errorf("session for user %d, want %d", userID, user.ID)
			}
			storedHash = tokenHash
			storedExpiry = expiresAt
			return nil
		},
	}
	uc := usecase.NewSessionUsecase(users, sessions, testJWTKey)

	got, token, err := uc.Login(context.Background(), user.Email, "swordfish")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("user id = %d, want %d", got.ID, user.ID)
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return testJWTKey, nil },
		jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if sub, _ := claims.GetSubject(); sub != "7" {
		t.Errorf("sub = %q, want %q", sub, "7")
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		t.Fatal("token missing jti")
	}
	if storedHash != usecase.HashSessionID(jti) {
		t.Error("session row must store the hash of the token's jti")
	}
	if remaining := time.Until(storedExpiry); remaining < 23*time.Hour || remaining > 25*time.Hour {
		t.Errorf("session expiry %v from now, want about 24h", remaining)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	user := loginUser(t)

	cases := []struct {
		name     string
		lookup   func(ctx context.Context, email string) (*domain.User, error)
		password string
	}{
		{
			"unknown email",
			func(context.Context, string) (*domain.User, error) { return nil, domain.ErrUserNotFound },
			"swordfish",
		},
		{
			"wrong password",
			func(context.Context, string) (*domain.User, error) { return user, nil },
			"not-the-password",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := usecase.NewSessionUsecase(&fakeUserRepo{findByEmail: tc.lookup}, &fakeSessionRepo{
				create: func(context.Context, int64, string, time.Time) error {
					t.Error("no session may be created on failed login")
					return nil
				},
			}, testJWTKey)

			_, _, err := uc.Login(context.Background(), user.Email, tc.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	var deletedHash string
	sessions := &fakeSessionRepo{
		deleteByHash: func(_ context.Context, tokenHash string) error {
			deletedHash = tokenHash
			return nil
		},
	}
	uc := usecase.NewSessionUsecase(&fakeUserRepo{}, sessions, testJWTKey)

	if err := uc.Logout(context.Background(), "some-jti"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if deletedHash != usecase.HashSessionID("some-jti") {
		t.Errorf("deleted hash = %s, want the jti hash", deletedHash)
	}
}

func TestLogout_MissingSessionUnauthorized(t *testing.T) {
	sessions := &fakeSessionRepo{
		deleteByHash: func(context.Context, string) error { return domain.ErrSessionNotFound },
	}
	uc := usecase.NewSessionUsecase(&fakeUserRepo{}, sessions, testJWTKey)

	if err := uc.Logout(context.Background(), "gone"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
