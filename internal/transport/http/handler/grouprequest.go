package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/transport/http/middleware"
)

// groupRequestUsecaser is the subset of GroupRequestUsecase the handler
// needs. Defined here (point of use) so tests can inject a fake.
type groupRequestUsecaser interface {
	ListPending(ctx context.Context, masterID, actorID int64) ([]*domain.GroupRequest, error)
	CreateRequest(ctx context.Context, groupID, requesterID int64) (*domain.GroupRequest, error)
	Accept(ctx context.Context, groupID, requestID, actorID int64) (*domain.GroupRequest, error)
	Destroy(ctx context.Context, groupID, requestID, actorID int64) error
}

type GroupRequestHandler struct {
	uc     groupRequestUsecaser
	logger *slog.Logger
}

func NewGroupRequestHandler(uc groupRequestUsecaser, logger *slog.Logger) *GroupRequestHandler {
	return &GroupRequestHandler{uc: uc, logger: logger.With("component", "group_request_handler")}
}

type groupSummaryResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Master int64  `json:"master"`
}

type userSummaryResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type groupRequestResponse struct {
	ID      int64                 `json:"id"`
	GroupID int64                 `json:"groupId"`
	UserID  int64                 `json:"userId"`
	Status  domain.RequestStatus  `json:"status"`
	Group   *groupSummaryResponse `json:"group,omitempty"`
	User    *userSummaryResponse  `json:"user,omitempty"`
}

func toGroupRequestResponse(gr *domain.GroupRequest) groupRequestResponse {
	resp := groupRequestResponse{
		ID:      gr.ID,
		GroupID: gr.GroupID,
		UserID:  gr.UserID,
		Status:  gr.Status,
	}
	if gr.Group != nil {
		resp.Group = &groupSummaryResponse{ID: gr.Group.ID, Name: gr.Group.Name, Master: gr.Group.Master}
	}
	if gr.User != nil {
		resp.User = &userSummaryResponse{ID: gr.User.ID, Username: gr.User.Username}
	}
	return resp
}

// GET /groups/:id/requests?master=N
func (h *GroupRequestHandler) List(c *gin.Context) {
	raw := c.Query("master")
	if raw == "" {
		abortError(c, http.StatusUnprocessableEntity, errMasterRequired)
		return
	}
	masterID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || masterID <= 0 {
		abortError(c, http.StatusUnprocessableEntity, errMasterRequired)
		return
	}

	requests, err := h.uc.ListPending(c.Request.Context(), masterID, c.GetInt64(middleware.UserIDKey))
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			abortError(c, http.StatusForbidden, errForbidden)
			return
		}
		h.logger.Error("list group requests", "master_id", masterID, "error", err)
		abortError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	items := make([]groupRequestResponse, len(requests))
	for i, gr := range requests {
		items[i] = toGroupRequestResponse(gr)
	}
	c.JSON(http.StatusOK, gin.H{"groupRequests": items})
}

// POST /groups/:id/requests
func (h *GroupRequestHandler) Create(c *gin.Context) {
	groupID, ok := idParam(c, "id", errGroupNotFound)
	if !ok {
		return
	}

	request, err := h.uc.CreateRequest(c.Request.Context(), groupID, c.GetInt64(middleware.UserIDKey))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupNotFound):
			abortError(c, http.StatusNotFound, errGroupNotFound)
		case errors.Is(err, domain.ErrRequestExists):
			abortError(c, http.StatusConflict, errRequestExists)
		case errors.Is(err, domain.ErrAlreadyInGroup):
			abortError(c, http.StatusUnprocessableEntity, errAlreadyInGroup)
		default:
			h.logger.Error("create group request", "group_id", groupID, "error", err)
			abortError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"groupRequest": toGroupRequestResponse(request)})
}

// POST /groups/:id/requests/:requestId/accept
func (h *GroupRequestHandler) Accept(c *gin.Context) {
	groupID, ok := idParam(c, "id", errGroupNotFound)
	if !ok {
		return
	}
	requestID, ok := idParam(c, "requestId", errRequestNotFound)
	if !ok {
		return
	}

	request, err := h.uc.Accept(c.Request.Context(), groupID, requestID, c.GetInt64(middleware.UserIDKey))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRequestNotFound):
			abortError(c, http.StatusNotFound, errRequestNotFound)
		case errors.Is(err, domain.ErrForbidden):
			abortError(c, http.StatusForbidden, errForbidden)
		default:
			h.logger.Error("accept group request", "group_id", groupID, "request_id", requestID, "error", err)
			abortError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"groupRequest": toGroupRequestResponse(request)})
}

// DELETE /groups/:id/requests/:requestId
func (h *GroupRequestHandler) Destroy(c *gin.Context) {
	groupID, ok := idParam(c, "id", errGroupNotFound)
	if !ok {
		return
	}
	requestID, ok := idParam(c, "requestId", errRequestNotFound)
	if !ok {
		return
	}

	err := h.uc.Destroy(c.Request.Context(), groupID, requestID, c.GetInt64(middleware.UserIDKey))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRequestNotFound):
			abortError(c, http.StatusNotFound, errRequestNotFound)
		case errors.Is(err, domain.ErrForbidden):
			abortError(c, http.StatusForbidden, errForbidden)
		default:
			h.logger.Error("destroy group request", "group_id", groupID, "request_id", requestID, "error", err)
			abortError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
