package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"github.com/tabletophq/groupfinder/internal/transport/http/handler"
	"github.com/tabletophq/groupfinder/internal/transport/http/middleware"
)

type Handlers struct {
	User         *handler.UserHandler
	Session      *handler.SessionHandler
	Password     *handler.PasswordHandler
	Group        *handler.GroupHandler
	GroupRequest *handler.GroupRequestHandler
}

func NewRouter(logger *slog.Logger, h Handlers, sessions middleware.SessionChecker, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(jwtKey, sessions)

	r.POST("/users", h.User.Create)
	r.GET("/users/:id", authMW, h.User.GetByID)
	r.PUT("/users/:id", authMW, h.User.Update)

	r.POST("/sessions", h.Session.Create)
	r.DELETE("/sessions", authMW, h.Session.Destroy)

	r.POST("/forgot-password", h.Password.Forgot)
	r.POST("/reset-password", h.Password.Reset)

	groups := r.Group("/groups", authMW)
	groups.POST("", h.Group.Create)
	groups.GET("", h.Group.List)
	groups.GET("/:id", h.Group.GetByID)
	groups.PUT("/:id", h.Group.Update)
	groups.DELETE("/:id", h.Group.Delete)
	groups.DELETE("/:id/players/:playerId", h.Group.RemovePlayer)

	groups.GET("/:id/requests", h.GroupRequest.List)
	groups.POST("/:id/requests", h.GroupRequest.Create)
	groups.POST("/:id/requests/:requestId/accept", h.GroupRequest.Accept)
	groups.DELETE("/:id/requests/:requestId", h.GroupRequest.Destroy)

	return r
}
