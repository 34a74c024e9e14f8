package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/transport/http/middleware"
	"github.com/tabletophq/groupfinder/internal/usecase"
)

type GroupHandler struct {
	uc     *usecase.GroupUsecase
	logger *slog.Logger
}

func NewGroupHandler(uc *usecase.GroupUsecase, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{uc: uc, logger: logger.With("component", "group_handler")}
}

type groupRequestPayload struct {
	Name        string `json:"name"        binding:"required,max=256"`
	Description string `json:"description" binding:"required"`
	Schedule    string `json:"schedule"    binding:"required"`
	Location    string `json:"location"    binding:"required"`
	Chronic     string `json:"chronic"     binding:"required"`
	Master      int64  `json:"master"      binding:"required,min=1"`
}

type groupResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schedule    string         `json:"schedule"`
	Location    string         `json:"location"`
	Chronic     string         `json:"chronic"`
	Master      int64          `json:"master"`
	Players     []userResponse `json:"players"`
	MasterUser  *userResponse  `json:"masterUser,omitempty"`
}

func toGroupResponse(g *domain.Group) groupResponse {
	players := make([]userResponse, len(g.Players))
	for i, p := range g.Players {
		players[i] = toUserResponse(p)
	}
	resp := groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Schedule:    g.Schedule,
		Location:    g.Location,
		Chronic:     g.Chronic,
		Master:      g.Master,
		Players:     players,
	}
	if g.MasterUser != nil {
		mu := toUserResponse(g.MasterUser)
		resp.MasterUser = &mu
	}
	return resp
}

// POST /groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req groupRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	group, err := h.uc.CreateGroup(c.Request.Context(), usecase.GroupPayload{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		Location:    req.Location,
		Chronic:     req.Chronic,
		Master:      req.Master,
	})
	if err != nil {
		h.logger.Error("create group", "error", err)
		abortError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group": toGroupResponse(group)})
}

// GET /groups/:id
func (h *GroupHandler) GetByID(c *gin.Context) {
	id, ok := idParam(c, "id", errGroupNotFound)
	if !ok {
		return
	}

	group, err := h.uc.GetGroup(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			abortError(c, http.StatusNotFound, errGroupNotFound)
			return
		}
		h.logger.Error("get group", "group_id", id, "error", err)
		abortError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": toGroupResponse(group)})
}

// GET /groups?user=&text=&page=&limit=
func (h *GroupHandler) List(c *gin.Context) {
	input := usecase.ListGroupsInput{Text: c.Query("text")}

	if raw := c.Query("user"); raw != "" {
		memberID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || memberID <= 0 {
			abortError(c, http.StatusUnprocessableEntity, "user query must be a valid id")
			return
		}
		input.MemberID = &memberID
	}
	input.Page, _ = strconv.Atoi(c.Query("page"))
	input.Limit, _ = strconv.Atoi(c.Query("limit"))

	result, err := h.uc.ListGroups(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("list groups", "error", err)
		abortError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	items := make([]groupResponse, len(result.Groups))
	for i, g := range result.Groups {
		items[i] = toGroupResponse(g)
	}
	c.JSON(http.StatusOK, gin.H{
		"groups": items,
		"page":   result.Page,
		"limit":  result.Limit,
		"total":  result.Total,
	})
}

// PUT /groups/:id
// Whatever master value the caller sends is ignored — ownership never moves.
func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id", errGroupNotFound)
	if !ok {
		return
	}

	var req groupRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	group, err := h.uc.UpdateGroup(c.Request.Context(), id, c.GetInt64(middleware.UserIDKey), usecase.GroupPayload{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		Location:    req.Location,
		Chronic:     req.Chronic,
		Master:      req.Master,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupNotFound):
			abortError(c, http.StatusNotFound, errGroupNotFound)
		case errors.Is(err, domain.ErrForbidden):
			abortError(c, http.StatusForbidden, errForbidden)
		default:
			h.logger.Error("update group", "group_id", id, "error", err)
			abortError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": toGroupResponse(group)})
}

// DELETE /groups/:id/players/:playerId
func (h *GroupHandler) RemovePlayer(c *gin.Context) {
	groupID, ok := idParam(c, "id", errGroupNotFound)
	if !ok {
		return
	}
	playerID, ok := idParam(c, "playerId", errPlayerNotInGroup)
	if !ok {
		return
	}

	err := h.uc.RemovePlayer(c.Request.Context(), groupID, playerID, c.GetInt64(middleware.UserIDKey))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupNotFound):
			abortError(c, http.StatusNotFound, errGroupNotFound)
		case errors.Is(err, domain.ErrForbidden):
			abortError(c, http.StatusForbidden, errForbidden)
		case errors.Is(err, domain.ErrCannotRemoveMaster):
			abortError(c, http.StatusBadRequest, errCannotRemoveMaster)
		case errors.Is(err, domain.ErrPlayerNotInGroup):
			abortError(c, http.StatusNotFound, errPlayerNotInGroup)
		default:
			h.logger.Error("remove player", "group_id", groupID, "player_id", playerID, "error", err)
			abortError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// DELETE /groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id", errGroupNotFound)
	if !ok {
		return
	}

	err := h.uc.DeleteGroup(c.Request.Context(), id, c.GetInt64(middleware.UserIDKey))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupNotFound):
			abortError(c, http.StatusNotFound, errGroupNotFound)
		case errors.Is(err, domain.ErrForbidden):
			abortError(c, http.StatusForbidden, errForbidden)
		default:
			h.logger.Error("delete group", "group_id", id, "error", err)
			abortError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
