package usecase

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/email"
	"github.com/tabletophq/groupfinder/internal/repository"
)

type fakeUserStore struct {
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	setPassword func(ctx context.Context, id int64, passwordHash, resetTokenHash string) error
}

func (s *fakeUserStore) Create(context.Context, repository.CreateUserInput) (*domain.User, error) {
	panic("not used")
}

func (s *fakeUserStore) FindByID(context.Context, int64) (*domain.User, error) {
	panic("not used")
}

func (s *fakeUserStore) FindByUsername(context.Context, string) (*domain.User, error) {
	panic("not used")
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findByEmail(ctx, email)
}

func (s *fakeUserStore) Update(context.Context, int64, repository.UpdateUserInput) (*domain.User, error) {
	panic("not used")
}

func (s *fakeUserStore) SetPassword(ctx context.Context, id int64, passwordHash, resetTokenHash string) error {
	return s.setPassword(ctx, id, passwordHash, resetTokenHash)
}

type fakeTokenStore struct {
	created    []storedToken
	findByHash func(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)
}

type storedToken struct {
	userID    int64
	tokenHash string
	createdAt time.Time
}

func (s *fakeTokenStore) Create(_ context.Context, userID int64, tokenHash string, createdAt time.Time) error {
	s.created = append(s.created, storedToken{userID, tokenHash, createdAt})
	return nil
}

func (s *fakeTokenStore) FindByHash(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	return s.findByHash(ctx, tokenHash)
}

func (s *fakeTokenStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	panic("not used")
}

type fakeSender struct {
	sent []email.Message
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestForgotPassword_StoresHashNotToken(t *testing.T) {
	users := &fakeUserStore{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 7, Username: "geralt", Email: email}, nil
		},
	}
	tokens := &fakeTokenStore{}
	sender := &fakeSender{}
	uc := NewPasswordUsecase(users, tokens, sender, discardLogger())

	err := uc.ForgotPassword(context.Background(), "geralt@kaermorhen.example", "https://app.example/reset")
	if err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	if len(tokens.created) != 1 {
		t.Fatalf("stored %d tokens, want 1", len(tokens.created))
	}

	// The emailed link carries the raw token; only its hash may be stored.
	body := sender.sent[0].HTML
	_, after, ok := strings.Cut(body, "?token=")
	if !ok {
		t.Fatalf("reset link missing token parameter: %q", body)
	}
	rawToken, _, _ := strings.Cut(after, `"`)
	if strings.Contains(tokens.created[0].tokenHash, rawToken) {
		t.Error("raw token leaked into the store")
	}
	wantHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
	if tokens.created[0].tokenHash != wantHash {
		t.Errorf("stored hash = %s, want sha256 of the emailed token", tokens.created[0].tokenHash)
	}
	if tokens.created[0].userID != 7 {
		t.Errorf("token stored for user %d, want 7", tokens.created[0].userID)
	}
}

func TestForgotPassword_UnknownEmailSilent(t *testing.T) {
	users := &fakeUserStore{
		findByEmail: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	tokens := &fakeTokenStore{}
	sender := &fakeSender{}
	uc := NewPasswordUsecase(users, tokens, sender, discardLogger())

	if err := uc.ForgotPassword(context.Background(), "nobody@example.com", "https://app.example/reset"); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(sender.sent) != 0 || len(tokens.created) != 0 {
		t.Error("unknown email must not send mail or store a token")
	}
}

func TestResetPassword_UnknownTokenNotFound(t *testing.T) {
	tokens := &fakeTokenStore{
		findByHash: func(context.Context, string) (*domain.PasswordResetToken, error) {
			return nil, domain.ErrTokenNotFound
		},
	}
	uc := NewPasswordUsecase(&fakeUserStore{}, tokens, &fakeSender{}, discardLogger())

	err := uc.ResetPassword(context.Background(), "deadbeef", "new-password")
	if !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("err = %v, want ErrTokenNotFound", err)
	}
}

func TestResetPassword_ExpiryBoundary(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		createdAt time.Time
		wantErr   error
	}{
		{"exactly at the ttl", now.Add(-domain.ResetTokenTTL), nil},
		{"one second past", now.Add(-domain.ResetTokenTTL - time.Second), domain.ErrTokenExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := &fakeTokenStore{
				findByHash: func(context.Context, string) (*domain.PasswordResetToken, error) {
					return &domain.PasswordResetToken{TokenHash: "h", UserID: 7, CreatedAt: tc.createdAt}, nil
				},
			}
			users := &fakeUserStore{
				setPassword: func(context.Context, int64, string, string) error { return nil },
			}
			uc := NewPasswordUsecase(users, tokens, &fakeSender{}, discardLogger())
			uc.now = func() time.Time { return now }

			err := uc.ResetPassword(context.Background(), "deadbeef", "new-password")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestResetPassword_WritesBcryptHashAndConsumesToken(t *testing.T) {
	tokenHash := fmt.Sprintf("%x", sha256.Sum256([]byte("deadbeef")))
	tokens := &fakeTokenStore{
		findByHash: func(_ context.Context, hash string) (*domain.PasswordResetToken, error) {
			if hash != tokenHash {
				t.Errorf("looked up %s, want sha256 of the raw token", hash)
			}
			return &domain.PasswordResetToken{TokenHash: hash, UserID: 7, CreatedAt: time.Now()}, nil
		},
	}
	var gotID int64
	var gotHash, gotTokenHash string
	users := &fakeUserStore{
		setPassword: func(_ context.Context, id int64, passwordHash, resetTokenHash string) error {
			gotID, gotHash, gotTokenHash = id, passwordHash, resetTokenHash
			return nil
		},
	}
	uc := NewPasswordUsecase(users, tokens, &fakeSender{}, discardLogger())

	if err := uc.ResetPassword(context.Background(), "deadbeef", "swordfish"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if gotID != 7 {
		t.Errorf("updated user %d, want 7", gotID)
	}
	if gotTokenHash != tokenHash {
		t.Errorf("consumed token hash = %s, want %s", gotTokenHash, tokenHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("swordfish")); err != nil {
		t.Errorf("stored hash does not verify against the new password: %v", err)
	}
}
