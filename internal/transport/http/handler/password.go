package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tabletophq/groupfinder/internal/domain"
)

// passwordUsecaser is the subset of PasswordUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type passwordUsecaser interface {
	ForgotPassword(ctx context.Context, email, resetURL string) error
	ResetPassword(ctx context.Context, rawToken, password string) error
}

type PasswordHandler struct {
	uc     passwordUsecaser
	logger *slog.Logger
}

func NewPasswordHandler(uc passwordUsecaser, logger *slog.Logger) *PasswordHandler {
	return &PasswordHandler{uc: uc, logger: logger.With("component", "password_handler")}
}

type forgotPasswordRequest struct {
	Email            string `json:"email"            binding:"required,email"`
	ResetPasswordURL string `json:"resetPasswordUrl" binding:"required,url"`
}

// POST /forgot-password
// Always 204 once the input validates — the response must not reveal
// whether the email belongs to an account.
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.uc.ForgotPassword(c.Request.Context(), req.Email, req.ResetPasswordURL); err != nil {
		h.logger.Error("forgot password", "error", err)
	}

	c.Status(http.StatusNoContent)
}

type resetPasswordRequest struct {
	Token    string `json:"token"    binding:"required"`
	Password string `json:"password" binding:"required,min=4"`
}

// POST /reset-password
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.uc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenNotFound):
			abortError(c, http.StatusNotFound, errTokenNotFound)
		case errors.Is(err, domain.ErrTokenExpired):
			abortTokenExpired(c)
		default:
			h.logger.Error("reset password", "error", err)
			abortError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
