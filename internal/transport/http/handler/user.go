package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/transport/http/middleware"
	"github.com/tabletophq/groupfinder/internal/usecase"
)

type UserHandler struct {
	uc     *usecase.UserUsecase
	logger *slog.Logger
}

func NewUserHandler(uc *usecase.UserUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{uc: uc, logger: logger.With("component", "user_handler")}
}

// userResponse never carries the password hash.
type userResponse struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Avatar   *string `json:"avatar,omitempty"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}

type createUserRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=64"`
	Email    string  `json:"email"    binding:"required,email"`
	Password string  `json:"password" binding:"required,min=4"`
	Avatar   *string `json:"avatar"   binding:"omitempty,url"`
}

// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := h.uc.Register(c.Request.Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			abortError(c, http.StatusConflict, errUsernameTaken)
		case errors.Is(err, domain.ErrEmailTaken):
			abortError(c, http.StatusConflict, errEmailTaken)
		default:
			h.logger.Error("register user", "error", err)
			abortError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

// GET /users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := idParam(c, "id", errUserNotFound)
	if !ok {
		return
	}

	user, err := h.uc.GetUser(c.Request.Context(), id, c.GetInt64(middleware.UserIDKey))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			abortError(c, http.StatusNotFound, errUserNotFound)
		case errors.Is(err, domain.ErrForbidden):
			abortError(c, http.StatusForbidden, errForbidden)
		default:
			h.logger.Error("get user", "user_id", id, "error", err)
			abortError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

type updateUserRequest struct {
	Email    string  `json:"email"    binding:"required,email"`
	Password string  `json:"password" binding:"required,min=4"`
	Avatar   *string `json:"avatar"   binding:"omitempty,url"`
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id", errUserNotFound)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := h.uc.UpdateUser(c.Request.Context(), id, c.GetInt64(middleware.UserIDKey), usecase.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			abortError(c, http.StatusNotFound, errUserNotFound)
		case errors.Is(err, domain.ErrForbidden):
			abortError(c, http.StatusForbidden, errForbidden)
		case errors.Is(err, domain.ErrEmailTaken):
			abortError(c, http.StatusConflict, errEmailTaken)
		default:
			h.logger.Error("update user", "user_id", id, "error", err)
			abortError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
