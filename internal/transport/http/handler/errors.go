package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errUserNotFound       = "User not found"
	errGroupNotFound      = "Group not found"
	errRequestNotFound    = "Group request not found"
	errPlayerNotInGroup   = "Player is not in the group"
	errForbidden          = "Forbidden"
	errUsernameTaken      = "Username already in use"
	errEmailTaken         = "Email already in use"
	errInvalidCredentials = "Invalid credentials"
	errRequestExists      = "group request already exists"
	errAlreadyInGroup     = "user is already in the group"
	errCannotRemoveMaster = "cannot remove master from group"
	errMasterRequired     = "master query should be provided"
	errTokenNotFound      = "Token not found"
	errTokenExpired       = "token expired"
)

// errorBody is the envelope every failure uses. The code collapses to
// BAD_REQUEST for API compatibility with older clients — the HTTP
// status is the discriminator — except for expired reset tokens, which
// keep their own TOKEN_EXPIRED code.
type errorBody struct {
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorBody{Code: "BAD_REQUEST", Status: status, Message: message})
}

func abortTokenExpired(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusGone, errorBody{
		Code:    "TOKEN_EXPIRED",
		Status:  http.StatusGone,
		Message: errTokenExpired,
	})
}

// idParam parses a numeric path parameter. An unparsable id can't
// resolve to any resource, so it reads as not found.
func idParam(c *gin.Context, name, notFoundMessage string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortError(c, http.StatusNotFound, notFoundMessage)
		return 0, false
	}
	return id, true
}
