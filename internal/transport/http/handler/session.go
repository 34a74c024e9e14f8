package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/metrics"
	"github.com/tabletophq/groupfinder/internal/transport/http/middleware"
	"github.com/tabletophq/groupfinder/internal/usecase"
)

type SessionHandler struct {
	uc     *usecase.SessionUsecase
	logger *slog.Logger
}

func NewSessionHandler(uc *usecase.SessionUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{uc: uc, logger: logger.With("component", "session_handler")}
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// POST /sessions
// Missing and wrong credentials answer the same 400 so the response
// shape never hints at which field was bad.
func (h *SessionHandler) Create(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, errInvalidCredentials)
		return
	}

	user, token, err := h.uc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			abortError(c, http.StatusBadRequest, errInvalidCredentials)
			return
		}
		h.logger.Error("login", "error", err)
		abortError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusCreated, gin.H{
		"user":  toUserResponse(user),
		"token": tokenResponse{Type: "bearer", Token: token},
	})
}

// DELETE /sessions
func (h *SessionHandler) Destroy(c *gin.Context) {
	jti := c.GetString(middleware.SessionJTIKey)

	if err := h.uc.Logout(c.Request.Context(), jti); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			abortError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h.logger.Error("logout", "error", err)
		abortError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	c.Status(http.StatusOK)
}
