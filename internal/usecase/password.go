package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/email"
	"github.com/tabletophq/groupfinder/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type PasswordUsecase struct {
	users  repository.UserRepository
	tokens repository.ResetTokenRepository
	email  email.Sender
	logger *slog.Logger
	now    func() time.Time
}

func NewPasswordUsecase(users repository.UserRepository, tokens repository.ResetTokenRepository, emailSender email.Sender, logger *slog.Logger) *PasswordUsecase {
	return &PasswordUsecase{
		users:  users,
		tokens: tokens,
		email:  emailSender,
		logger: logger.With("component", "password_usecase"),
		now:    time.Now,
	}
}

// ForgotPassword generates a single-use token, stores its hash, and
// emails the reset link. An unknown email is swallowed — the endpoint
// answers the same either way so account existence never leaks.
func (u *PasswordUsecase) ForgotPassword(ctx context.Context, emailAddr, resetURL string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			u.logger.DebugContext(ctx, "forgot password for unknown email")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	raw := make([]byte, 32)
	if _, err = io.ReadFull(rand.Reader, raw); err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)
	tokenHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))

	if err = u.tokens.Create(ctx, user.ID, tokenHash, u.now()); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := resetURL + "?token=" + url.QueryEscape(rawToken)
	msg := email.Message{
		To:      emailAddr,
		Subject: "Reset your password",
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p>Click the link below to choose a new password (valid for 2 hours):</p><p><a href="%s">%s</a></p>`,
			user.Username, link, link,
		),
	}
	if err = u.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes the token. Absent (or already consumed) hashes
// are not found; a token older than domain.ResetTokenTTL is expired —
// at exactly the TTL it still works. The password write and the token
// delete share one transaction in the store.
func (u *PasswordUsecase) ResetPassword(ctx context.Context, rawToken, password string) error {
	tokenHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))

	token, err := u.tokens.FindByHash(ctx, tokenHash)
	if err != nil {
		return err
	}

	if u.now().Sub(token.CreatedAt) > domain.ResetTokenTTL {
		return domain.ErrTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := u.users.SetPassword(ctx, token.UserID, string(hash), tokenHash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}
